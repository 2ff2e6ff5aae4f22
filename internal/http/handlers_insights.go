package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/insights"
	"spendsight/internal/llm"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

const errAIUnavailable = "AI service unavailable"

type categorizeRequest struct {
	Description *string `json:"description"`
}

type insightsRequest struct {
	Budget *budgetBody `json:"budget"`
}

type quickInsightsRequest struct {
	ExpenseData []expenseRequest `json:"expenseData"`
	Budget      *budgetBody      `json:"budget"`
}

type insightsResponse struct {
	Success      bool               `json:"success"`
	Insights     []insights.Insight `json:"insights"`
	Timestamp    string             `json:"timestamp"`
	ExpenseCount *int               `json:"expenseCount,omitempty"`
	Source       string             `json:"source,omitempty"`
}

type budgetSuggestRequest struct {
	Income *float64 `json:"income"`
}

type budgetSuggestResponse struct {
	insights.BudgetSuggestion
	Income float64 `json:"income"`
}

// handleCategorizeExpense never fails with a 5xx: without a working model
// the keyword rules answer.
func (s *Server) handleCategorizeExpense(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		BadRequestError("Description is required and must be a string").Write(w)
		return
	}
	description := sanitizeInput(*req.Description)

	result := insights.Categorization{Category: core.GuessCategory(description), Method: insights.MethodFallback}
	if s.ai != nil {
		result = s.ai.Categorize(r.Context(), description)
	}
	NewJSONResponse().Body(result).Write(w)
}

func (s *Server) handleAIInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentInsights)

	var req insightsRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	expenses, err := s.expenses.ListExpenses(ctx, storage.ExpenseFilter{Limit: storage.DefaultListLimit})
	if err != nil {
		logger.LogError(ctx, "Load expenses for insights failed", err, log.OpList, nil)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}

	var budget core.Budget
	if req.Budget != nil {
		budget = req.Budget.toBudget()
	} else if budget, err = s.currentBudget(ctx); err != nil {
		logger.LogError(ctx, "Load budget for insights failed", err, log.OpRead, nil)
		InternalServerError("Failed to load budget").Write(w)
		return
	}

	out, err := s.generate(ctx, expenses, budget, false)
	if err != nil {
		s.writeAIError(w, r, err)
		return
	}

	count := len(expenses)
	NewJSONResponse().Body(insightsResponse{
		Success:      true,
		Insights:     out,
		Timestamp:    s.now().UTC().Format(time.RFC3339),
		ExpenseCount: &count,
		Source:       "ai",
	}).Write(w)
}

func (s *Server) handleQuickInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req quickInsightsRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	if req.ExpenseData == nil || req.Budget == nil {
		BadRequestError("Missing expense data or budget information").Write(w)
		return
	}

	now := s.now()
	expenses := make([]core.Expense, 0, len(req.ExpenseData))
	for i, item := range req.ExpenseData {
		e, err := item.toExpense(now)
		if err != nil {
			log.FromContext(ctx).DebugContext(ctx, "Skipping invalid quick insight expense", "index", i, log.FieldError, err)
			continue
		}
		expenses = append(expenses, e)
	}

	out, err := s.generate(ctx, expenses, req.Budget.toBudget(), true)
	if err != nil {
		s.writeAIError(w, r, err)
		return
	}

	NewJSONResponse().Body(insightsResponse{
		Success:   true,
		Insights:  out,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}).Write(w)
}

func (s *Server) generate(ctx context.Context, expenses []core.Expense, budget core.Budget, quick bool) ([]insights.Insight, error) {
	if s.ai == nil {
		return nil, llm.ErrNotConfigured
	}
	var (
		out []insights.Insight
		err error
	)
	if quick {
		out, err = s.ai.QuickInsights(ctx, expenses, budget)
	} else {
		out, err = s.ai.GenerateInsights(ctx, expenses, budget)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []insights.Insight{}
	}
	return out, nil
}

// writeAIError maps insight failures to a 503, or 429 when the provider is
// rate limiting, with a remediation hint.
func (s *Server) writeAIError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := http.StatusServiceUnavailable
	suggestion := "Please ensure your " + s.credentialName() + " is valid and configured"

	var pe *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		suggestion = "Set " + s.credentialName() + " to enable AI insights"
	case errors.As(err, &pe) && pe.Kind == llm.KindRateLimit:
		status = http.StatusTooManyRequests
		suggestion = "The AI provider is rate limiting requests. Try again in a minute"
	case errors.As(err, &pe) && pe.Kind == llm.KindUnavailable:
		suggestion = "The AI provider could not be reached. Try again later"
	}

	log.FromContext(ctx).LogError(ctx, "AI insights failed", err, log.OpRead,
		log.NewFields().WithHTTPResponse(status, 0))
	DetailedErrorResponse(status, errAIUnavailable, err.Error(), suggestion).Write(w)
}

func (s *Server) credentialName() string {
	if s.cfg.CredentialName != "" {
		return s.cfg.CredentialName
	}
	return llm.KeyName(llm.ProviderGroq)
}

func (s *Server) handleSuggestBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req budgetSuggestRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	var income float64
	if req.Income != nil {
		income = *req.Income
	} else {
		sources, err := s.income.ListIncome(ctx)
		if err != nil {
			log.FromContext(ctx).LogError(ctx, "Load income for budget suggestion failed", err, log.OpList, nil)
			InternalServerError("Failed to load income sources").Write(w)
			return
		}
		income = core.MonthlyIncome(sources).Float64()
	}

	suggestion := insights.FallbackBudget(income)
	if s.ai != nil {
		suggestion = s.ai.SuggestBudget(ctx, income)
	}
	NewJSONResponse().Body(budgetSuggestResponse{BudgetSuggestion: suggestion, Income: income}).Write(w)
}
