package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/cache"
	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

type fakeStore struct {
	nextID    int64
	expenses  []core.Expense
	listCalls int
	createErr error
}

func (f *fakeStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if f.createErr != nil {
		return core.Expense{}, f.createErr
	}
	f.nextID++
	e.ID = f.nextID
	f.expenses = append(f.expenses, e)
	return e, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, _ storage.ExpenseFilter) ([]core.Expense, error) {
	f.listCalls++
	return append([]core.Expense(nil), f.expenses...), nil
}

func (f *fakeStore) DeleteExpense(_ context.Context, id int64) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakePublisher struct {
	published []core.Expense
	err       error
}

func (f *fakePublisher) PublishExpenseCreated(_ context.Context, e core.Expense) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func validExpense() core.Expense {
	return core.Expense{
		Date:        core.NewDate(2025, 3, 14),
		Description: "Lunch",
		Amount:      core.Money{Cents: 1250},
		Category:    core.CategoryFood,
	}
}

func TestExpenseService_CreateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and publishes", func(t *testing.T) {
		store, pub := &fakeStore{}, &fakePublisher{}
		svc := NewExpenseService(store, pub, nil, log.Nop())

		saved, err := svc.CreateExpense(ctx, validExpense())
		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.ID)
		require.Len(t, pub.published, 1)
		assert.Equal(t, saved, pub.published[0])
	})

	t.Run("invalid expense is rejected before storage", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewExpenseService(store, nil, nil, log.Nop())

		e := validExpense()
		e.Amount = core.Money{}
		_, err := svc.CreateExpense(ctx, e)
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
		assert.Empty(t, store.expenses)
	})

	t.Run("publish failure keeps the expense", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewExpenseService(store, &fakePublisher{err: errors.New("broker down")}, nil, log.Nop())

		saved, err := svc.CreateExpense(ctx, validExpense())
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
		assert.Len(t, store.expenses, 1)
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		svc := NewExpenseService(&fakeStore{createErr: boom}, nil, nil, log.Nop())

		_, err := svc.CreateExpense(ctx, validExpense())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "save expense")
	})
}

func TestExpenseService_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	lists := cache.NewExpenseLists(10, time.Minute)
	svc := NewExpenseService(store, nil, lists, log.Nop())

	empty, err := svc.ListExpenses(ctx, storage.ExpenseFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = svc.ListExpenses(ctx, storage.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls, "second call served from cache")

	saved, err := svc.CreateExpense(ctx, validExpense())
	require.NoError(t, err)

	items, err := svc.ListExpenses(ctx, storage.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls, "create invalidates the cache")
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteExpense(ctx, saved.ID))
	items, err = svc.ListExpenses(ctx, storage.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, store.listCalls, "delete invalidates the cache")
	assert.Empty(t, items)
}

func TestExpenseService_DeleteMissing(t *testing.T) {
	svc := NewExpenseService(&fakeStore{}, nil, nil, log.Nop())
	err := svc.DeleteExpense(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
