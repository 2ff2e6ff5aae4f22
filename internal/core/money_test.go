package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true},
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"1500", 150000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, got)
		})
	}
}

func TestMoneyConversions(t *testing.T) {
	assert.Equal(t, int64(1999), MoneyFromFloat(19.99).Cents)
	assert.Equal(t, int64(1000), MoneyFromFloat(9.999).Cents)
	assert.InDelta(t, 12.3, Money{Cents: 1230}.Float64(), 1e-9)
	assert.Equal(t, "12.30", Money{Cents: 1230}.String())
	assert.Equal(t, "0.05", Money{Cents: 5}.String())
}
