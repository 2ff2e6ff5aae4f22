package insights

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
)

var fixedNow = time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

func expense(desc string, cents int64, cat core.Category, day time.Time) core.Expense {
	return core.Expense{Description: desc, Amount: core.Money{Cents: cents}, Category: cat, Date: core.Date{Time: day}}
}

func marchDay(d int) time.Time {
	return time.Date(2025, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestPrepare_Empty(t *testing.T) {
	s := Prepare(nil, core.Budget{Monthly: 2000}, fixedNow)
	assert.Equal(t, 0, s.TotalExpenses)
	assert.Zero(t, s.TotalSpent)
	assert.Zero(t, s.AverageExpense)
	assert.Zero(t, s.BudgetUsedPercent)
	assert.Empty(t, s.TopCategories)
	assert.Empty(t, s.HighExpenses)
	assert.Equal(t, 31, s.DaysInMonth)
	assert.Equal(t, 10, s.CurrentDay)
}

func TestPrepare_ZeroBudget(t *testing.T) {
	s := Prepare([]core.Expense{expense("lunch", 1000, core.CategoryFood, marchDay(2))}, core.Budget{}, fixedNow)
	assert.True(t, math.IsInf(s.BudgetUsedPercent, 1))

	s = Prepare(nil, core.Budget{}, fixedNow)
	assert.True(t, math.IsNaN(s.BudgetUsedPercent))
}

func TestPrepare_MonthWindow(t *testing.T) {
	expenses := []core.Expense{
		expense("feb", 100, core.CategoryFood, time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC)),
		expense("first", 200, core.CategoryFood, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
		expense("last evening", 300, core.CategoryFood, time.Date(2025, time.March, 31, 21, 0, 0, 0, time.UTC)),
		expense("april", 400, core.CategoryFood, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}
	s := Prepare(expenses, core.Budget{Monthly: 100}, fixedNow)
	assert.Equal(t, 2, s.TotalExpenses)
	assert.InDelta(t, 5.0, s.TotalSpent, 1e-9)
	assert.InDelta(t, 2.5, s.AverageExpense, 1e-9)
	assert.InDelta(t, 5.0, s.BudgetUsedPercent, 1e-9)
}

func TestPrepare_TopCategoriesStable(t *testing.T) {
	expenses := []core.Expense{
		expense("bus", 500, core.CategoryTransport, marchDay(1)),
		expense("movie", 500, core.CategoryEntertainment, marchDay(2)),
		expense("rent", 90000, core.CategoryRent, marchDay(3)),
		expense("pizza", 300, core.CategoryFood, marchDay(4)),
		expense("pizza again", 200, core.CategoryFood, marchDay(5)),
		expense("pen", 100, core.CategoryShopping, marchDay(6)),
	}
	s := Prepare(expenses, core.Budget{Monthly: 2000}, fixedNow)

	require.Len(t, s.TopCategories, 3)
	assert.Equal(t, core.CategoryRent, s.TopCategories[0].Category)
	// transport, entertainment and food tie at 5.00; first seen wins.
	assert.Equal(t, core.CategoryTransport, s.TopCategories[1].Category)
	assert.Equal(t, core.CategoryEntertainment, s.TopCategories[2].Category)
	assert.InDelta(t, 5.0, s.TopCategories[2].Amount, 1e-9)
}

func TestPrepare_HighExpensesCapAndOrder(t *testing.T) {
	var expenses []core.Expense
	for i := 1; i <= 15; i++ {
		expenses = append(expenses, expense("item", int64(i%4)*100+100, core.CategoryOther, marchDay(i)))
	}
	original := append([]core.Expense(nil), expenses...)

	s := Prepare(expenses, core.Budget{Monthly: 2000}, fixedNow)
	require.Len(t, s.HighExpenses, 10)
	for i := 1; i < len(s.HighExpenses); i++ {
		assert.GreaterOrEqual(t, s.HighExpenses[i-1].Amount.Cents, s.HighExpenses[i].Amount.Cents)
	}
	// Ties keep input order: the first 400-cent item is day 3.
	assert.Equal(t, 3, s.HighExpenses[0].Date.Day())
	assert.Equal(t, original, expenses)
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)
}
