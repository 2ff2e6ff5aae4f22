package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"spendsight/internal/core"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		expense("Rent March", 1200000, core.CategoryRent, marchDay(1)),
		expense("Groceries", 250050, core.CategoryFood, marchDay(3)),
		expense("Metro card", 50000, core.CategoryTransport, marchDay(5)),
		expense("Cinema", 80000, core.CategoryEntertainment, marchDay(7)),
	}
}

func TestCompose_Content(t *testing.T) {
	budget := core.Budget{Monthly: 20000, Weekly: 5000, SavingsGoal: 5000}
	s := Prepare(sampleExpenses(), budget, fixedNow)
	p := NewComposer("₹").Compose(s, budget)

	assert.Equal(t, InsightsSystemPrompt, p.System)
	assert.Contains(t, p.System, "ONLY with a valid JSON array")

	for _, want := range []string{
		"- Monthly budget: ₹20,000",
		"- Spent so far: ₹15,800.50 (79.0% of budget)",
		"- Day 10 of 31 this month",
		"- Spending about ₹1,580 per day",
		"- At this pace, will spend ₹48,982 this month",
		"- Could save 21.0% of budget",
		"- Made 4 purchases",
		"- Rent: ₹12,000 (75.9% of spending)",
		"- ₹12,000 on Rent March (rent)",
		"- ₹2,500.50 on Groceries (food)",
	} {
		assert.Contains(t, p.User, want)
	}
	// Only the three largest expenses are listed.
	assert.NotContains(t, p.User, "on Metro card")
}

func TestCompose_ZeroBudgetRendersNA(t *testing.T) {
	budget := core.Budget{}
	s := Prepare(sampleExpenses(), budget, fixedNow)
	p := NewComposer("$").Compose(s, budget)

	assert.Contains(t, p.User, "(N/A of budget)")
	assert.Contains(t, p.User, "- Could save N/A of budget")
	assert.NotContains(t, p.User, "NaN")
	assert.NotContains(t, p.User, "Inf")
}

func TestCompose_EmptyMonth(t *testing.T) {
	p := NewComposer("").Compose(Prepare(nil, core.Budget{Monthly: 1000}, fixedNow), core.Budget{Monthly: 1000})
	assert.Contains(t, p.User, "- Made 0 purchases")
	assert.Contains(t, p.User, "- Average purchase: ₹0")
	assert.True(t, strings.Contains(p.User, "WHERE THE MONEY GOES:\n\nBIGGEST EXPENSES:"))
}

func TestCompose_Deterministic(t *testing.T) {
	budget := core.Budget{Monthly: 20000}
	c := NewComposer("₹")
	first := c.Compose(Prepare(sampleExpenses(), budget, fixedNow), budget)
	second := c.Compose(Prepare(sampleExpenses(), budget, fixedNow), budget)
	assert.Equal(t, first, second)
}
