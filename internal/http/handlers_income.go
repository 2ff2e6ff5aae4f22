package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

type incomeRequest struct {
	Name      string     `json:"name"`
	Amount    flexAmount `json:"amount"`
	Frequency string     `json:"frequency"`
}

type incomeResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

type incomeSummary struct {
	MonthlyTotal float64 `json:"monthlyTotal"`
	Sources      int     `json:"sources"`
}

// budgetBody is the wire form of core.Budget.
type budgetBody struct {
	Monthly     float64 `json:"monthly"`
	Weekly      float64 `json:"weekly"`
	SavingsGoal float64 `json:"savingsGoal"`
}

func (b budgetBody) toBudget() core.Budget {
	return core.Budget{Monthly: b.Monthly, Weekly: b.Weekly, SavingsGoal: b.SavingsGoal}
}

func newBudgetBody(b core.Budget) budgetBody {
	return budgetBody{Monthly: b.Monthly, Weekly: b.Weekly, SavingsGoal: b.SavingsGoal}
}

func newIncomeResponse(s core.IncomeSource) incomeResponse {
	out := incomeResponse{
		ID:        s.ID,
		Name:      s.Name,
		Amount:    s.Amount.Float64(),
		Frequency: string(s.Frequency),
	}
	if !s.CreatedAt.IsZero() {
		out.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (req incomeRequest) toIncome() (core.IncomeSource, error) {
	src := core.IncomeSource{
		Name:      sanitizeInput(req.Name),
		Frequency: core.Frequency(strings.ToLower(strings.TrimSpace(req.Frequency))),
	}
	if src.Name == "" {
		return core.IncomeSource{}, core.ErrEmptyName
	}
	amount, err := req.Amount.Money()
	if err != nil {
		return core.IncomeSource{}, err
	}
	src.Amount = amount
	return src, src.Validate()
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	src, err := req.toIncome()
	if err != nil {
		msg, _ := validationMessage(err)
		BadRequestError(msg).Write(w)
		return
	}

	created, err := s.income.CreateIncome(ctx, src)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Create income failed", err, log.OpCreate, nil)
		InternalServerError("Failed to create income source").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newIncomeResponse(created)).Write(w)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sources, err := s.income.ListIncome(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "List income failed", err, log.OpList, nil)
		InternalServerError("Failed to load income sources").Write(w)
		return
	}

	out := make([]incomeResponse, len(sources))
	for i, src := range sources {
		out[i] = newIncomeResponse(src)
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	src, err := req.toIncome()
	if err != nil {
		msg, _ := validationMessage(err)
		BadRequestError(msg).Write(w)
		return
	}
	src.ID = id

	if err := s.income.UpdateIncome(ctx, src); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Income source not found").Write(w)
			return
		}
		log.FromContext(ctx).LogError(ctx, "Update income failed", err, log.OpUpdate, nil)
		InternalServerError("Failed to update income source").Write(w)
		return
	}
	NewJSONResponse().Body(newIncomeResponse(src)).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.income.DeleteIncome(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Income source not found").Write(w)
			return
		}
		log.FromContext(ctx).LogError(ctx, "Delete income failed", err, log.OpDelete, nil)
		InternalServerError("Failed to delete income source").Write(w)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sources, err := s.income.ListIncome(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Income summary failed", err, log.OpRead, nil)
		InternalServerError("Failed to load income sources").Write(w)
		return
	}
	NewJSONResponse().Body(incomeSummary{
		MonthlyTotal: core.MonthlyIncome(sources).Float64(),
		Sources:      len(sources),
	}).Write(w)
}

// currentBudget returns the stored budget, or the configured defaults
// before the first save.
func (s *Server) currentBudget(ctx context.Context) (core.Budget, error) {
	b, err := s.budget.GetBudget(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return s.cfg.DefaultBudget, nil
	}
	return b, err
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b, err := s.currentBudget(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Load budget failed", err, log.OpRead, nil)
		InternalServerError("Failed to load budget").Write(w)
		return
	}
	NewJSONResponse().Body(newBudgetBody(b)).Write(w)
}

func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body budgetBody
	if err := decodeJSON(r, &body); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	b := body.toBudget()
	if err := b.Validate(); err != nil {
		msg, _ := validationMessage(err)
		BadRequestError(msg).Write(w)
		return
	}

	if err := s.budget.PutBudget(ctx, b); err != nil {
		log.FromContext(ctx).LogError(ctx, "Save budget failed", err, log.OpUpdate, nil)
		InternalServerError("Failed to save budget").Write(w)
		return
	}
	NewJSONResponse().Body(newBudgetBody(b)).Write(w)
}
