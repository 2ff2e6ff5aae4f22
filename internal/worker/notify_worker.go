package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/sheets"
)

// ExpenseNotifier tells an external workflow about a new expense.
type ExpenseNotifier interface {
	NotifyExpense(ctx context.Context, e core.Expense) error
}

// NotifyWorker fans an expense-created event out to the configured targets.
// Either target may be nil.
type NotifyWorker struct {
	notifier ExpenseNotifier
	mirror   sheets.ExpenseWriter
	logger   *log.Logger
}

func NewNotifyWorker(notifier ExpenseNotifier, mirror sheets.ExpenseWriter, logger *log.Logger) *NotifyWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &NotifyWorker{
		notifier: notifier,
		mirror:   mirror,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Targets reports how many outputs are wired.
func (w *NotifyWorker) Targets() int {
	n := 0
	if w.notifier != nil {
		n++
	}
	if w.mirror != nil {
		n++
	}
	return n
}

// HandleExpenseCreated delivers msg to every target concurrently. A failing
// target does not stop the others; the first error is returned so the message
// is requeued.
func (w *NotifyWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	e := msg.Expense()
	start := time.Now()

	var g errgroup.Group
	if w.notifier != nil {
		g.Go(func() error {
			if err := w.notifier.NotifyExpense(ctx, e); err != nil {
				w.logger.LogError(ctx, "Webhook notification failed", err, log.OpNotify,
					log.NewFields().WithExpense(e.ID, e.Description, e.Amount.Cents, string(e.Category)))
				return fmt.Errorf("notify webhook: %w", err)
			}
			return nil
		})
	}
	if w.mirror != nil {
		g.Go(func() error {
			ref, err := w.mirror.Append(ctx, e)
			if err != nil {
				w.logger.LogError(ctx, "Sheet mirror failed", err, log.OpMirror,
					log.NewFields().WithExpense(e.ID, e.Description, e.Amount.Cents, string(e.Category)))
				return fmt.Errorf("mirror to sheet: %w", err)
			}
			w.logger.DebugContext(ctx, "Expense mirrored to sheet", log.FieldExpenseID, e.ID, "row_ref", ref)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Expense event handled",
		log.FieldMessageID, msg.MessageID,
		log.FieldExpenseID, e.ID,
		"targets", w.Targets(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
