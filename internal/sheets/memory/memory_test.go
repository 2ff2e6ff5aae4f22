package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
)

func TestStoreAppend(t *testing.T) {
	s := New()
	e := core.Expense{ID: 1, Date: core.NewDate(2025, 1, 2), Description: "t", Amount: core.Money{Cents: 123}, Category: core.CategoryFood}

	ref, err := s.Append(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	again, err := s.Append(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	e.ID = 2
	ref, err = s.Append(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "mem:2", ref)
	assert.Len(t, s.Expenses(), 2)
}

func TestStoreAppendValidates(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.Expense{ID: 1, Date: core.NewDate(2025, 1, 2), Description: "t", Category: core.CategoryFood})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, s.Expenses())
}
