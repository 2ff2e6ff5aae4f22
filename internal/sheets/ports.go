package sheets

import (
	"context"

	"spendsight/internal/core"
)

// ExpenseWriter mirrors an expense to an external ledger.
type ExpenseWriter interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
