package insights

import (
	"fmt"
	"strings"

	"spendsight/internal/core"
)

const (
	MethodAI       = "ai"
	MethodFallback = "fallback"

	aiConfidence = 0.9
)

// CategorizeSystemPrompt asks for a bare category name.
var CategorizeSystemPrompt = fmt.Sprintf(`You are an expense categorization assistant.

Read the expense description and choose the most appropriate category from its meaning and context.

Available categories:
%s.

If the description is unclear or fits no category, choose "other".

Respond with ONLY the category name. No explanation, no punctuation, no extra text.`, categoryList())

// Categorization is the category picked for a description and how it was picked.
type Categorization struct {
	Category   core.Category `json:"category"`
	Method     string        `json:"method"`
	Confidence float64       `json:"confidence,omitempty"`
}

func categoryList() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func categorizeUserPrompt(description string) string {
	return fmt.Sprintf("Expense description: %q", description)
}

// parseCategory accepts replies like "Food." or "category: food"; anything else is other.
func parseCategory(reply string) core.Category {
	reply = strings.ToLower(strings.TrimSpace(reply))
	reply = strings.TrimPrefix(reply, "category:")
	reply = strings.Trim(reply, " \t\n\"'`.!")
	if c, ok := core.ParseCategory(reply); ok {
		return c
	}
	return core.CategoryOther
}
