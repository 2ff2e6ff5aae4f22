package insights

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	// BudgetFallbackExplanation accompanies the deterministic 80/20 split.
	BudgetFallbackExplanation = "Suggested based on common financial guidelines (80% spending, 20% savings)."
	budgetDefaultExplanation  = "Balanced budget for your income level."
)

var (
	spendShare   = decimal.RequireFromString("0.8")
	savingsShare = decimal.RequireFromString("0.2")
)

// BudgetSystemPrompt asks for a single JSON object.
const BudgetSystemPrompt = `You are a professional financial planner. From the user's monthly income, suggest a balanced budget using the 50/30/20 rule or a variation suited to students and low-income earners.

CRITICAL: Respond ONLY with valid JSON and no other text.

JSON format:
{
  "monthlySpend": number,
  "savingsGoal": number,
  "explanation": "One short, friendly sentence explaining the recommendation (max 100 chars)"
}`

// BudgetSuggestion is a recommended monthly spend and savings target.
type BudgetSuggestion struct {
	MonthlySpend float64 `json:"monthlySpend"`
	SavingsGoal  float64 `json:"savingsGoal"`
	Explanation  string  `json:"explanation"`
}

// BudgetUserPrompt renders the income question.
func BudgetUserPrompt(currency string, income float64) string {
	return fmt.Sprintf("My monthly income is %s%s. What budget do you suggest?", currency, decimal.NewFromFloat(income).String())
}

// FallbackBudget splits income 80/20, rounding each share to a whole unit.
func FallbackBudget(income float64) BudgetSuggestion {
	return BudgetSuggestion{
		MonthlySpend: share(income, spendShare),
		SavingsGoal:  share(income, savingsShare),
		Explanation:  BudgetFallbackExplanation,
	}
}

// ParseBudgetSuggestion reads a model reply. Missing or non-positive numbers
// fall back field by field; ok is false when the reply is not a JSON object.
func ParseBudgetSuggestion(raw string, income float64) (BudgetSuggestion, bool) {
	clean := stripFences(raw)
	if !gjson.Valid(clean) {
		return BudgetSuggestion{}, false
	}
	doc := gjson.Parse(clean)
	if !doc.IsObject() {
		return BudgetSuggestion{}, false
	}

	out := BudgetSuggestion{
		MonthlySpend: positiveOr(doc.Get("monthlySpend"), share(income, spendShare)),
		SavingsGoal:  positiveOr(doc.Get("savingsGoal"), share(income, savingsShare)),
		Explanation:  budgetDefaultExplanation,
	}
	if e := doc.Get("explanation"); e.Type == gjson.String && e.Str != "" {
		out.Explanation = e.Str
	}
	return out, true
}

func share(income float64, part decimal.Decimal) float64 {
	if income <= 0 {
		return 0
	}
	v, _ := decimal.NewFromFloat(income).Mul(part).Round(0).Float64()
	return v
}

func positiveOr(v gjson.Result, fallback float64) float64 {
	if v.Type == gjson.Number && v.Num > 0 {
		return v.Num
	}
	return fallback
}
