// Package webhook notifies an external workflow (an n8n webhook) about new expenses.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spendsight/internal/core"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Notifier posts expenses to a fixed URL.
type Notifier struct {
	url    string
	client *http.Client
}

// payload is the body the workflow expects.
type payload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Note        *string `json:"note"`
}

// NewNotifier returns a Notifier for url. A nil client gets a default with a 10s timeout.
func NewNotifier(url string, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{url: url, client: client}
}

// NotifyExpense POSTs e as JSON. Any non-2xx answer is an error.
func (n *Notifier) NotifyExpense(ctx context.Context, e core.Expense) error {
	p := payload{
		Description: e.Description,
		Amount:      e.Amount.Float64(),
		Category:    string(e.Category),
		Date:        e.Date.UTC().Format(time.RFC3339),
	}
	if e.Note != "" {
		p.Note = &e.Note
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(text))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
