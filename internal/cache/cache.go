// Package cache holds the in-process caches in front of SQLite reads.
package cache

import (
	"context"
	"fmt"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// ExpenseLists caches expense listings per filter. Any write to expenses
// must call Invalidate.
type ExpenseLists struct {
	lru *LRUCache[[]core.Expense]
}

func NewExpenseLists(maxSize int, ttl time.Duration) *ExpenseLists {
	return &ExpenseLists{lru: NewLRUCache[[]core.Expense](maxSize, ttl)}
}

// ListKey identifies one listing. Month 0 means every month.
func ListKey(year, month, limit int) string {
	return fmt.Sprintf("%04d-%02d/%d", year, month, limit)
}

func (c *ExpenseLists) Get(key string) ([]core.Expense, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return append([]core.Expense(nil), v...), true
}

func (c *ExpenseLists) Set(key string, expenses []core.Expense) {
	c.lru.Set(key, append([]core.Expense(nil), expenses...))
}

// Invalidate drops every cached listing.
func (c *ExpenseLists) Invalidate() {
	c.lru.Purge()
}

func (c *ExpenseLists) CleanExpired() int {
	return c.lru.CleanExpired()
}

func (c *ExpenseLists) Size() int {
	return c.lru.Size()
}

// Manager periodically evicts expired entries from registered caches.
type Manager struct {
	caches []Cleaner
	logger *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{logger: logger}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// Sweep cleans every registered cache once and returns the number of evicted entries.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.DebugContext(ctx, "Evicted expired cache entries", log.FieldCount, n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
