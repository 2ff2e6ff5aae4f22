// Package insights turns a month of expenses into AI-generated spending advice.
//
// The pipeline has three stages: Prepare reduces expenses to a Summary,
// Composer renders the Summary into a prompt, and Normalize maps whatever the
// model replies onto the fixed Insight schema. Service wires the stages to an
// llm.Completer.
package insights

import (
	"sort"
	"time"

	"spendsight/internal/core"
)

const (
	maxTopCategories = 3
	maxHighExpenses  = 10
)

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category core.Category
	Amount   float64
}

// Summary is the month-to-date digest the prompt is built from.
type Summary struct {
	TotalExpenses     int
	TotalSpent        float64
	BudgetUsedPercent float64 // +Inf or NaN when the monthly budget is zero
	AverageExpense    float64
	TopCategories     []CategoryTotal
	HighExpenses      []core.Expense
	DaysInMonth       int
	CurrentDay        int
}

// MonthBounds returns the half-open interval [start, end) of now's calendar month.
func MonthBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// Prepare summarises the expenses dated in now's month. It never fails and
// leaves the input slice untouched.
func Prepare(expenses []core.Expense, budget core.Budget, now time.Time) Summary {
	start, end := MonthBounds(now)

	month := make([]core.Expense, 0, len(expenses))
	var totalCents int64
	for _, e := range expenses {
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		month = append(month, e)
		totalCents += e.Amount.Cents
	}

	totalSpent := core.Money{Cents: totalCents}.Float64()
	count := max(len(month), 1)

	return Summary{
		TotalExpenses:     len(month),
		TotalSpent:        totalSpent,
		BudgetUsedPercent: totalSpent / budget.Monthly * 100,
		AverageExpense:    totalSpent / float64(count),
		TopCategories:     topCategories(month),
		HighExpenses:      highExpenses(month),
		DaysInMonth:       end.AddDate(0, 0, -1).Day(),
		CurrentDay:        now.Day(),
	}
}

type categorySum struct {
	category core.Category
	cents    int64
}

// topCategories sums per category in first-seen order so the stable sort
// breaks ties by first appearance.
func topCategories(month []core.Expense) []CategoryTotal {
	index := make(map[core.Category]int)
	var totals []categorySum
	for _, e := range month {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, categorySum{category: e.Category})
		}
		totals[i].cents += e.Amount.Cents
	}

	sort.SliceStable(totals, func(a, b int) bool { return totals[a].cents > totals[b].cents })

	out := make([]CategoryTotal, 0, min(len(totals), maxTopCategories))
	for _, t := range totals[:min(len(totals), maxTopCategories)] {
		out = append(out, CategoryTotal{Category: t.category, Amount: core.Money{Cents: t.cents}.Float64()})
	}
	return out
}

func highExpenses(month []core.Expense) []core.Expense {
	sorted := make([]core.Expense, len(month))
	copy(sorted, month)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Amount.Cents > sorted[b].Amount.Cents })
	return sorted[:min(len(sorted), maxHighExpenses)]
}
