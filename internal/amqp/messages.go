package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendsight/internal/core"
)

// ExpenseCreatedMessage announces a newly stored expense. It carries the full
// record so consumers need no database access.
type ExpenseCreatedMessage struct {
	MessageID   string    `json:"message_id"`
	ExpenseID   int64     `json:"expense_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Note        string    `json:"note,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseCreatedMessage wraps e in a message with a fresh ID.
func NewExpenseCreatedMessage(e core.Expense) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		MessageID:   uuid.NewString(),
		ExpenseID:   e.ID,
		Date:        e.Date.Time,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Note:        e.Note,
		Timestamp:   time.Now(),
	}
}

// Expense rebuilds the domain value carried by the message.
func (m *ExpenseCreatedMessage) Expense() core.Expense {
	return core.Expense{
		ID:          m.ExpenseID,
		Date:        core.Date{Time: m.Date},
		Description: m.Description,
		Amount:      core.Money{Cents: m.AmountCents},
		Category:    core.Category(m.Category),
		Note:        m.Note,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON decodes and sanity-checks a message body.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ExpenseID <= 0 {
		return nil, fmt.Errorf("invalid expense id %d", msg.ExpenseID)
	}
	return &msg, nil
}
