package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendsight/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so that text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05Z"

// DefaultListLimit caps expense listings.
const DefaultListLimit = 200

type SQLiteRepository struct {
	db *sql.DB
}

// ExpenseFilter narrows ListExpenses. A zero Year or Month means no month filter.
type ExpenseFilter struct {
	Limit int
	Year  int
	Month int
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense stores e and returns it with its assigned ID.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (occurred_at, description, amount_cents, category, note) VALUES (?, ?, ?, ?, ?)`,
		e.Date.UTC().Format(timeLayout), e.Description, e.Amount.Cents, string(e.Category), e.Note)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return e, nil
}

// GetExpense retrieves a single expense by ID
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, occurred_at, description, amount_cents, category, note FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns expenses newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	limit := f.Limit
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	query := `SELECT id, occurred_at, description, amount_cents, category, note FROM expenses`
	var args []any
	if f.Year > 0 && f.Month >= 1 && f.Month <= 12 {
		start := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		query += ` WHERE occurred_at >= ? AND occurred_at < ?`
		args = append(args, start.Format(timeLayout), start.AddDate(0, 1, 0).Format(timeLayout))
	}
	query += ` ORDER BY occurred_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense. Deleting a missing row returns ErrNotFound.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// CreateIncome stores an income source.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, s core.IncomeSource) (core.IncomeSource, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO income_sources (name, amount_cents, frequency, created_at) VALUES (?, ?, ?, ?)`,
		s.Name, s.Amount.Cents, string(s.Frequency), s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("create income source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("create income source: last insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = s.CreatedAt.UTC().Truncate(time.Second)
	return s, nil
}

// ListIncome returns all income sources, oldest first.
func (r *SQLiteRepository) ListIncome(ctx context.Context) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount_cents, frequency, created_at FROM income_sources ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	sources := []core.IncomeSource{}
	for rows.Next() {
		var (
			s         core.IncomeSource
			freq      string
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Amount.Cents, &freq, &createdAt); err != nil {
			return nil, fmt.Errorf("list income sources: %w", err)
		}
		s.Frequency = core.Frequency(freq)
		s.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	return sources, nil
}

// UpdateIncome overwrites name, amount and frequency of an existing source.
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, s core.IncomeSource) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE income_sources SET name = ?, amount_cents = ?, frequency = ? WHERE id = ?`,
		s.Name, s.Amount.Cents, string(s.Frequency), s.ID)
	if err != nil {
		return fmt.Errorf("update income source %d: %w", s.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("update income source %d: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM income_sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income source %d: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("delete income source %d: %w", id, err)
	}
	return nil
}

// GetBudget returns the stored budget, or ErrNotFound before the first PutBudget.
func (r *SQLiteRepository) GetBudget(ctx context.Context) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly, weekly, savings_goal FROM budget_settings WHERE id = 1`).
		Scan(&b.Monthly, &b.Weekly, &b.SavingsGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("get budget: %w", ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// PutBudget creates or replaces the stored budget.
func (r *SQLiteRepository) PutBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_settings (id, monthly, weekly, savings_goal, updated_at) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET monthly = excluded.monthly, weekly = excluded.weekly,
		 savings_goal = excluded.savings_goal, updated_at = excluded.updated_at`,
		b.Monthly, b.Weekly, b.SavingsGoal, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget updated", "monthly", b.Monthly, "weekly", b.Weekly, "savings_goal", b.SavingsGoal)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e          core.Expense
		occurredAt string
		category   string
	)
	if err := s.Scan(&e.ID, &occurredAt, &e.Description, &e.Amount.Cents, &category, &e.Note); err != nil {
		return core.Expense{}, err
	}
	t, err := time.Parse(timeLayout, occurredAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
	}
	e.Date = core.Date{Time: t}
	e.Category = core.Category(category)
	return e, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
