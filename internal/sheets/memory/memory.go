// Package memory is an in-process ExpenseWriter, used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendsight/internal/core"
	ports "spendsight/internal/sheets"
)

var _ ports.ExpenseWriter = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
	seen  map[int64]string
}

func New() *Store {
	return &Store{seen: make(map[int64]string)}
}

// Append records the expense and returns a synthetic row reference. Appending
// the same expense ID twice returns the first reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.seen[e.ID]; ok && e.ID != 0 {
		return ref, nil
	}
	s.items = append(s.items, e)
	ref := fmt.Sprintf("mem:%d", len(s.items))
	s.seen[e.ID] = ref
	return ref, nil
}

// Expenses returns a copy of everything appended so far.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}
