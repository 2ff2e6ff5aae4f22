package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

type expenseRequest struct {
	Description string     `json:"description"`
	Amount      flexAmount `json:"amount"`
	Category    string     `json:"category"`
	Date        string     `json:"date"`
	Note        string     `json:"note"`
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Note        *string `json:"note"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	out := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.Float64(),
		Category:    string(e.Category),
		Date:        e.Date.UTC().Format(time.RFC3339),
	}
	if e.Note != "" {
		note := e.Note
		out.Note = &note
	}
	return out
}

// toExpense validates the request shape. Domain rules are checked by the service.
func (req expenseRequest) toExpense(now time.Time) (core.Expense, error) {
	category := core.CategoryOther
	if strings.TrimSpace(req.Category) != "" {
		c, ok := core.ParseCategory(req.Category)
		if !ok {
			return core.Expense{}, core.ErrInvalidCategory
		}
		category = c
	}

	amount, err := req.Amount.Money()
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseDate(req.Date, now)
	if err != nil {
		return core.Expense{}, err
	}

	return core.Expense{
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Category:    category,
		Note:        sanitizeInput(req.Note),
	}, nil
}

// validationMessage maps domain validation errors to client messages.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "description is required", true
	case errors.Is(err, core.ErrDescriptionTooLong):
		return "description must be at most 200 characters", true
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount must be a positive number", true
	case errors.Is(err, core.ErrInvalidDate):
		return "date is invalid", true
	case errors.Is(err, core.ErrInvalidCategory):
		return "category must be one of: " + categoryNames(), true
	case errors.Is(err, core.ErrEmptyName):
		return "name is required", true
	case errors.Is(err, core.ErrInvalidFrequency):
		return "frequency must be one of: monthly, weekly, bi-weekly, yearly", true
	case errors.Is(err, core.ErrNegativeBudget):
		return "budget values must not be negative", true
	}
	return "", false
}

func categoryNames() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	e, err := req.toExpense(s.now())
	if err == nil {
		e, err = s.expenses.CreateExpense(ctx, e)
	}
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			BadRequestError(msg).Write(w)
			return
		}
		logger.LogError(ctx, "Create expense failed", err, log.OpCreate, nil)
		InternalServerError("Failed to create expense").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(newExpenseResponse(e)).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	items, err := s.expenses.ListExpenses(ctx, storage.ExpenseFilter{Limit: limit, Year: month.Year, Month: month.Month})
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "List expenses failed", err, log.OpList, nil)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}

	out := make([]expenseResponse, len(items))
	for i, e := range items {
		out[i] = newExpenseResponse(e)
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Expense not found").Write(w)
			return
		}
		log.FromContext(ctx).LogError(ctx, "Delete expense failed", err, log.OpDelete, log.NewFields().WithExpense(id, "", 0, ""))
		InternalServerError("Failed to delete expense").Write(w)
		return
	}
	NoContent().Write(w)
}
