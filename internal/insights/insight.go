package insights

import "strings"

type InsightType string

const (
	TypeSpendingPattern    InsightType = "spending_pattern"
	TypeBudgetAlert        InsightType = "budget_alert"
	TypeSavingsOpportunity InsightType = "savings_opportunity"
	TypeFinancialHealth    InsightType = "financial_health"
	TypeRecommendation     InsightType = "recommendation"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Insight is one normalised piece of advice.
type Insight struct {
	Type       InsightType `json:"type"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	Severity   Severity    `json:"severity"`
	Actionable bool        `json:"actionable"`
	Category   string      `json:"category,omitempty"`
}

// rule maps any of its substrings to a value. Rules are evaluated in order.
type rule[T any] struct {
	patterns []string
	value    T
}

func matchRule[T any](rules []rule[T], text string, fallback T) T {
	text = strings.ToLower(text)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(text, p) {
				return r.value
			}
		}
	}
	return fallback
}

var typeRules = []rule[InsightType]{
	{[]string{"budget", "alert"}, TypeBudgetAlert},
	{[]string{"pattern", "spending"}, TypeSpendingPattern},
	{[]string{"saving", "opportunity"}, TypeSavingsOpportunity},
	{[]string{"health", "financial"}, TypeFinancialHealth},
}

var severityRules = []rule[Severity]{
	{[]string{"high", "critical"}, SeverityHigh},
	{[]string{"medium", "moderate"}, SeverityMedium},
}

// ClassifyType maps free text to an InsightType, defaulting to recommendation.
func ClassifyType(s string) InsightType {
	return matchRule(typeRules, s, TypeRecommendation)
}

// ClassifySeverity maps free text to a Severity. Low is the floor.
func ClassifySeverity(s string) Severity {
	return matchRule(severityRules, s, SeverityLow)
}

type adviceStyle struct {
	kind       InsightType
	title      string
	severity   Severity
	actionable bool
}

var adviceRules = []rule[adviceStyle]{
	{[]string{"great", "good work"}, adviceStyle{TypeFinancialHealth, "Great Job!", SeverityLow, false}},
	{[]string{"spend less", "save"}, adviceStyle{TypeSavingsOpportunity, "Save Money", SeverityMedium, true}},
	{[]string{"budget"}, adviceStyle{TypeBudgetAlert, "Budget Update", SeverityLow, true}},
	{[]string{"spending"}, adviceStyle{TypeSpendingPattern, "Spending Tip", SeverityLow, true}},
}

var defaultAdvice = adviceStyle{TypeRecommendation, "Money Tip", SeverityLow, true}

const (
	maxAdviceRunes = 120
	adviceEllipsis = "..."
)

// FromAdvice classifies a bare advice sentence by its wording.
func FromAdvice(text string) Insight {
	style := matchRule(adviceRules, text, defaultAdvice)
	msg := truncate(text, maxAdviceRunes)
	if strings.TrimSpace(msg) == "" {
		msg = defaultMessage
	}
	return Insight{
		Type:       style.kind,
		Title:      style.title,
		Message:    msg,
		Severity:   style.severity,
		Actionable: style.actionable,
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-len(adviceEllipsis)]) + adviceEllipsis
}
