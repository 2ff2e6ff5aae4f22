package core

import (
	"errors"
	"strings"
	"time"
)

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyYearly   Frequency = "yearly"
)

const maxDescriptionLen = 200

type (
	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Category    Category
		Note        string
	}

	IncomeSource struct {
		ID        int64
		Name      string
		Amount    Money
		Frequency Frequency
		CreatedAt time.Time
	}

	// Budget is the user's spending plan. All values are in major currency units.
	Budget struct {
		Monthly     float64
		Weekly      float64
		SavingsGoal float64
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrNegativeBudget     = errors.New("budget values must not be negative")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Valid reports whether f is one of the supported pay frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyWeekly, FrequencyBiWeekly, FrequencyYearly:
		return true
	}
	return false
}

// MonthlyFactor converts one payment at this frequency to a monthly amount.
func (f Frequency) MonthlyFactor() float64 {
	switch f {
	case FrequencyWeekly:
		return 52.0 / 12.0
	case FrequencyBiWeekly:
		return 26.0 / 12.0
	case FrequencyYearly:
		return 1.0 / 12.0
	default:
		return 1
	}
}

func (s IncomeSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

// MonthlyIncome sums every source normalised to a monthly amount.
func MonthlyIncome(sources []IncomeSource) Money {
	var total float64
	for _, s := range sources {
		total += s.Amount.Float64() * s.Frequency.MonthlyFactor()
	}
	return MoneyFromFloat(total)
}

func (b Budget) Validate() error {
	if b.Monthly < 0 || b.Weekly < 0 || b.SavingsGoal < 0 {
		return ErrNegativeBudget
	}
	return nil
}
