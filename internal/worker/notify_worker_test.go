package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/sheets/memory"
)

type fakeNotifier struct {
	mu   sync.Mutex
	got  []core.Expense
	fail error
}

func (f *fakeNotifier) NotifyExpense(_ context.Context, e core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, e)
	return f.fail
}

func message() *amqp.ExpenseCreatedMessage {
	return amqp.NewExpenseCreatedMessage(core.Expense{
		ID:          9,
		Date:        core.NewDate(2025, 4, 2),
		Description: "Electricity bill",
		Amount:      core.Money{Cents: 154000},
		Category:    core.CategoryUtilities,
	})
}

func TestHandleExpenseCreated_BothTargets(t *testing.T) {
	n := &fakeNotifier{}
	mirror := memory.New()
	w := NewNotifyWorker(n, mirror, log.Nop())
	assert.Equal(t, 2, w.Targets())

	require.NoError(t, w.HandleExpenseCreated(context.Background(), message()))

	require.Len(t, n.got, 1)
	assert.Equal(t, "Electricity bill", n.got[0].Description)
	rows := mirror.Expenses()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(9), rows[0].ID)
	assert.Equal(t, core.CategoryUtilities, rows[0].Category)
}

func TestHandleExpenseCreated_NoTargets(t *testing.T) {
	w := NewNotifyWorker(nil, nil, log.Nop())
	assert.Zero(t, w.Targets())
	assert.NoError(t, w.HandleExpenseCreated(context.Background(), message()))
}

func TestHandleExpenseCreated_FailureStillRunsOthers(t *testing.T) {
	n := &fakeNotifier{fail: errors.New("502 bad gateway")}
	mirror := memory.New()
	w := NewNotifyWorker(n, mirror, log.Nop())

	err := w.HandleExpenseCreated(context.Background(), message())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify webhook")
	assert.Len(t, mirror.Expenses(), 1)
}

func TestHandleExpenseCreated_RedeliveryIsIdempotentForMirror(t *testing.T) {
	mirror := memory.New()
	w := NewNotifyWorker(nil, mirror, log.Nop())
	msg := message()

	require.NoError(t, w.HandleExpenseCreated(context.Background(), msg))
	require.NoError(t, w.HandleExpenseCreated(context.Background(), msg))
	assert.Len(t, mirror.Expenses(), 1)
}
