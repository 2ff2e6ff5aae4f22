package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
	"spendsight/internal/log"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")
	now = now.Add(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCache_OverwriteAndPurge(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Zero(t, c.Size())
	c.Delete("missing")
}

func TestExpenseLists(t *testing.T) {
	lists := NewExpenseLists(8, time.Minute)
	key := ListKey(2025, 3, 200)
	assert.Equal(t, "2025-03/200", key)

	in := []core.Expense{{ID: 1, Description: "Bus"}}
	lists.Set(key, in)
	in[0].Description = "mutated"

	got, ok := lists.Get(key)
	require.True(t, ok)
	assert.Equal(t, "Bus", got[0].Description)

	got[0].Description = "mutated too"
	again, _ := lists.Get(key)
	assert.Equal(t, "Bus", again[0].Description)

	lists.Invalidate()
	_, ok = lists.Get(key)
	assert.False(t, ok)
}

func TestManager(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lists := NewExpenseLists(8, time.Second)
	lists.lru.now = func() time.Time { return now }
	lists.Set("a", nil)
	lists.Set("b", nil)

	m := NewManager(log.Nop())
	m.Register(lists)
	assert.Zero(t, m.Sweep())

	now = now.Add(2 * time.Second)
	assert.Equal(t, 2, m.Sweep())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, m.Run(ctx, time.Hour))
}
