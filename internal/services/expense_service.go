package services

import (
	"context"
	"fmt"

	"spendsight/internal/cache"
	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

// ExpenseStore persists expenses.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// Publisher announces stored expenses to asynchronous consumers.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
}

// ExpenseService orchestrates expense operations across SQLite, the listing
// cache and AMQP.
type ExpenseService struct {
	store     ExpenseStore
	publisher Publisher
	lists     *cache.ExpenseLists
	logger    *log.Logger
}

// NewExpenseService wires the service. publisher and lists may be nil.
func NewExpenseService(store ExpenseStore, publisher Publisher, lists *cache.ExpenseLists, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		lists:     lists,
		logger:    logger.WithComponent(log.ComponentExpense),
	}
}

// CreateExpense validates and saves e, then publishes an expense-created
// event. The expense is stored even when publishing fails.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()

	fields := log.NewFields().WithExpense(saved.ID, saved.Description, saved.Amount.Cents, string(saved.Category))
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP not configured, skipping expense event", fields.ToSlice()...)
		return saved, nil
	}
	if err := s.publisher.PublishExpenseCreated(ctx, saved); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense event", err, log.OpPublish, fields)
		return saved, nil
	}

	s.logger.InfoContext(ctx, "Expense created", fields.ToSlice()...)
	return saved, nil
}

// ListExpenses returns expenses newest first, serving repeated filters from
// the cache.
func (s *ExpenseService) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	key := cache.ListKey(f.Year, f.Month, f.Limit)
	if s.lists != nil {
		if items, ok := s.lists.Get(key); ok {
			s.logger.DebugContext(ctx, "Expense list cache hit", "key", key, log.FieldCount, len(items))
			return nonNil(items), nil
		}
	}

	items, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if s.lists != nil {
		s.lists.Set(key, items)
	}
	return nonNil(items), nil
}

// DeleteExpense removes an expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, id)
	return nil
}

func (s *ExpenseService) invalidate() {
	if s.lists != nil {
		s.lists.Invalidate()
	}
}

func nonNil(items []core.Expense) []core.Expense {
	if items == nil {
		return []core.Expense{}
	}
	return items
}
