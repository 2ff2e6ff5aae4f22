package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func at(y int, m time.Month, d, h int) core.Date {
	return core.Date{Time: time.Date(y, m, d, h, 0, 0, 0, time.UTC)}
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateExpense(ctx, core.Expense{
		Date:        at(2025, time.March, 3, 9),
		Description: "Groceries",
		Amount:      core.Money{Cents: 4550},
		Category:    core.CategoryFood,
		Note:        "weekly shop",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetExpense(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, repo.DeleteExpense(ctx, created.ID))
	_, err = repo.GetExpense(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, created.ID), ErrNotFound)
}

func TestListExpenses(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, e := range []core.Expense{
		{Date: at(2025, time.February, 28, 23), Description: "feb", Amount: core.Money{Cents: 100}, Category: core.CategoryOther},
		{Date: at(2025, time.March, 1, 0), Description: "first", Amount: core.Money{Cents: 200}, Category: core.CategoryFood},
		{Date: at(2025, time.March, 31, 22), Description: "last", Amount: core.Money{Cents: 300}, Category: core.CategoryRent},
		{Date: at(2025, time.April, 1, 0), Description: "april", Amount: core.Money{Cents: 400}, Category: core.CategoryShopping},
	} {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		all, err := repo.ListExpenses(ctx, ExpenseFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "april", all[0].Description)
		assert.Equal(t, "feb", all[3].Description)
	})

	t.Run("month filter", func(t *testing.T) {
		march, err := repo.ListExpenses(ctx, ExpenseFilter{Year: 2025, Month: 3})
		require.NoError(t, err)
		require.Len(t, march, 2)
		assert.Equal(t, "last", march[0].Description)
		assert.Equal(t, core.CategoryRent, march[0].Category)
		assert.Equal(t, "first", march[1].Description)
	})

	t.Run("limit", func(t *testing.T) {
		two, err := repo.ListExpenses(ctx, ExpenseFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, two, 2)
	})

	t.Run("empty month is not nil", func(t *testing.T) {
		none, err := repo.ListExpenses(ctx, ExpenseFilter{Year: 2020, Month: 1})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestIncomeLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	salary, err := repo.CreateIncome(ctx, core.IncomeSource{Name: "Salary", Amount: core.Money{Cents: 300000}, Frequency: core.FrequencyMonthly})
	require.NoError(t, err)
	_, err = repo.CreateIncome(ctx, core.IncomeSource{Name: "Tutoring", Amount: core.Money{Cents: 20000}, Frequency: core.FrequencyWeekly})
	require.NoError(t, err)

	sources, err := repo.ListIncome(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "Salary", sources[0].Name)
	assert.Equal(t, core.FrequencyWeekly, sources[1].Frequency)
	assert.False(t, sources[0].CreatedAt.IsZero())

	salary.Amount = core.Money{Cents: 320000}
	salary.Frequency = core.FrequencyBiWeekly
	require.NoError(t, repo.UpdateIncome(ctx, salary))

	sources, err = repo.ListIncome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(320000), sources[0].Amount.Cents)
	assert.Equal(t, core.FrequencyBiWeekly, sources[0].Frequency)

	require.NoError(t, repo.DeleteIncome(ctx, salary.ID))
	assert.ErrorIs(t, repo.DeleteIncome(ctx, salary.ID), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateIncome(ctx, salary), ErrNotFound)
}

func TestBudget(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.GetBudget(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.PutBudget(ctx, core.Budget{Monthly: 20000, Weekly: 5000, SavingsGoal: 4000}))
	require.NoError(t, repo.PutBudget(ctx, core.Budget{Monthly: 25000, Weekly: 6000, SavingsGoal: 5000}))

	b, err := repo.GetBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Budget{Monthly: 25000, Weekly: 6000, SavingsGoal: 5000}, b)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	_, err = repo.CreateExpense(ctx, core.Expense{Date: at(2025, time.May, 5, 5), Description: "Bus", Amount: core.Money{Cents: 150}, Category: core.CategoryTransport})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Ping(ctx))

	all, err := repo.ListExpenses(ctx, ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
