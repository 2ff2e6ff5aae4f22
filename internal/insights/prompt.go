package insights

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"spendsight/internal/core"
)

const notAvailable = "N/A"

// InsightsSystemPrompt is the fixed output contract sent with every insights request.
const InsightsSystemPrompt = `You are a friendly financial advisor who explains money matters in plain, simple English.
Study the spending data you are given and reply with practical advice anyone can follow.

CRITICAL: Respond ONLY with a valid JSON array. Do not write anything before or after it.

Each element of the array must have this shape:
{
  "type": "spending_pattern|budget_alert|savings_opportunity|financial_health|recommendation",
  "title": "Short clear title (max 25 chars)",
  "message": "Plain-language advice (max 120 chars)",
  "severity": "low|medium|high",
  "actionable": true,
  "category": "optional category name"
}

Rules:
- Return 4 to 5 insights.
- Use everyday words and avoid financial jargon.
- Give advice the user can act on, with concrete numbers where they help.
- Be encouraging and positive.`

// Prompt is a system instruction plus the data-bearing user message.
type Prompt struct {
	System string
	User   string
}

// Composer renders summaries into prompts. It is safe for concurrent use.
type Composer struct {
	currency string
	printer  *message.Printer
}

// NewComposer returns a Composer that prefixes amounts with currency.
func NewComposer(currency string) *Composer {
	if currency == "" {
		currency = "₹"
	}
	return &Composer{currency: currency, printer: message.NewPrinter(language.English)}
}

// Compose builds the insights prompt. The output depends only on its inputs.
func (c *Composer) Compose(s Summary, budget core.Budget) Prompt {
	burnRate := s.TotalSpent / float64(max(s.CurrentDay, 1))
	projected := burnRate * float64(s.DaysInMonth)
	savingsRate := (budget.Monthly - s.TotalSpent) / budget.Monthly * 100

	var b strings.Builder
	b.WriteString("Look at this person's spending and give 4-5 helpful money tips in simple English. Keep them easy to understand and actionable.\n\n")

	b.WriteString("SPENDING SUMMARY:\n")
	c.line(&b, "- Monthly budget: %s", c.amount(budget.Monthly))
	c.line(&b, "- Spent so far: %s (%s of budget)", c.amount(s.TotalSpent), c.percent(s.BudgetUsedPercent))
	c.line(&b, "- Day %d of %d this month", s.CurrentDay, s.DaysInMonth)
	c.line(&b, "- Spending about %s per day", c.rounded(burnRate))
	c.line(&b, "- At this pace, will spend %s this month", c.rounded(projected))
	c.line(&b, "- Could save %s of budget", c.percent(savingsRate))
	c.line(&b, "- Made %d purchases", s.TotalExpenses)
	c.line(&b, "- Average purchase: %s", c.rounded(s.AverageExpense))

	b.WriteString("\nWHERE THE MONEY GOES:\n")
	for _, ct := range s.TopCategories {
		share := ct.Amount / s.TotalSpent * 100
		c.line(&b, "- %s: %s (%s of spending)", capitalize(string(ct.Category)), c.amount(ct.Amount), c.percent(share))
	}

	b.WriteString("\nBIGGEST EXPENSES:\n")
	for _, e := range s.HighExpenses[:min(len(s.HighExpenses), 3)] {
		c.line(&b, "- %s on %s (%s)", c.amount(e.Amount.Float64()), e.Description, e.Category)
	}

	b.WriteString("\nGive advice like:\n")
	b.WriteString("- \"You're doing great with your budget!\"\n")
	b.WriteString("- \"Try to spend less on [category] to save more money\"\n")
	b.WriteString("- \"You could save X by doing Y\"\n")
	b.WriteString("- \"Your [category] spending is higher than usual\"\n\n")
	b.WriteString("Sound like a friend who is good with money: simple words, encouraging tone.")

	return Prompt{System: InsightsSystemPrompt, User: b.String()}
}

func (c *Composer) line(b *strings.Builder, format string, args ...any) {
	b.WriteString(c.printer.Sprintf(format, args...))
	b.WriteByte('\n')
}

// amount groups thousands and keeps cents only when there are any.
func (c *Composer) amount(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	if v == math.Trunc(v) {
		return c.currency + c.printer.Sprintf("%.0f", v)
	}
	return c.currency + c.printer.Sprintf("%.2f", v)
}

func (c *Composer) rounded(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return c.currency + c.printer.Sprintf("%.0f", v)
}

func (c *Composer) percent(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return c.printer.Sprintf("%.1f%%", v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
