// Package core holds the domain types shared by storage, insights and the HTTP layer.
//
// Amounts are stored as integer cents. Conversions to and from decimal strings
// go through shopspring/decimal so rounding is exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Signs, empty
// strings and values that round to zero are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MoneyFromFloat converts a major-unit amount to Money, rounding to the nearest cent.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()}
}

// Float64 returns the amount in major units. Use Cents for arithmetic.
func (m Money) Float64() float64 {
	f, _ := decimal.New(m.Cents, -2).Float64()
	return f
}

// String renders the amount with two decimals, e.g. "12.30".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}
