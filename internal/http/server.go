package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendsight/internal/cache"
	"spendsight/internal/core"
	"spendsight/internal/insights"
	"spendsight/internal/log"
	"spendsight/internal/middleware/ratelimit"
	"spendsight/internal/middleware/security"
	"spendsight/internal/middleware/trace"
	"spendsight/internal/storage"
)

// ExpenseService creates, lists and deletes expenses.
type ExpenseService interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// IncomeStore persists income sources.
type IncomeStore interface {
	CreateIncome(ctx context.Context, s core.IncomeSource) (core.IncomeSource, error)
	ListIncome(ctx context.Context) ([]core.IncomeSource, error)
	UpdateIncome(ctx context.Context, s core.IncomeSource) error
	DeleteIncome(ctx context.Context, id int64) error
}

// BudgetStore persists the budget settings.
type BudgetStore interface {
	GetBudget(ctx context.Context) (core.Budget, error)
	PutBudget(ctx context.Context, b core.Budget) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InsightService is the AI surface used by the insight and categorisation routes.
type InsightService interface {
	Configured() bool
	GenerateInsights(ctx context.Context, expenses []core.Expense, budget core.Budget) ([]insights.Insight, error)
	QuickInsights(ctx context.Context, expenses []core.Expense, budget core.Budget) ([]insights.Insight, error)
	SuggestBudget(ctx context.Context, income float64) insights.BudgetSuggestion
	Categorize(ctx context.Context, description string) insights.Categorization
}

// Config holds the server settings.
type Config struct {
	Addr               string
	PingMessage        string
	DefaultBudget      core.Budget
	RateLimitPerMinute int
	// CredentialName names the LLM key in AI error suggestions.
	CredentialName string
	// WriteTimeout must exceed the LLM timeout so AI routes can answer.
	WriteTimeout time.Duration
}

// Deps are the collaborators behind the routes. Lists is optional.
type Deps struct {
	Expenses ExpenseService
	Income   IncomeStore
	Budget   BudgetStore
	DB       Pinger
	Insights InsightService
	Lists    *cache.ExpenseLists
	Logger   *log.Logger
}

type Server struct {
	http.Server

	cfg      Config
	expenses ExpenseService
	income   IncomeStore
	budget   BudgetStore
	db       Pinger
	ai       InsightService
	lists    *cache.ExpenseLists

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *log.Logger
	started  time.Time
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.PingMessage == "" {
		cfg.PingMessage = "ping"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 90 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		cfg:      cfg,
		expenses: deps.Expenses,
		income:   deps.Income,
		budget:   deps.Budget,
		db:       deps.DB,
		ai:       deps.Insights,
		lists:    deps.Lists,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP, logger),
		logger:   logger,
		started:  time.Now(),
		now:      time.Now,
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)
	guard := func(h http.HandlerFunc) http.Handler { return limited(h) }

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/ping", s.handlePing)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.Handle("POST /api/expenses", guard(s.handleCreateExpense))
	mux.Handle("DELETE /api/expenses/{id}", guard(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/income", s.handleListIncome)
	mux.HandleFunc("GET /api/income/summary", s.handleIncomeSummary)
	mux.Handle("POST /api/income", guard(s.handleCreateIncome))
	mux.Handle("PUT /api/income/{id}", guard(s.handleUpdateIncome))
	mux.Handle("DELETE /api/income/{id}", guard(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.Handle("PUT /api/budget", guard(s.handlePutBudget))
	mux.Handle("POST /api/budget/suggest", guard(s.handleSuggestBudget))

	mux.Handle("POST /api/categorize-expense", guard(s.handleCategorizeExpense))
	mux.Handle("POST /api/ai-insights", guard(s.handleAIInsights))
	mux.Handle("POST /api/ai-insights/quick", guard(s.handleQuickInsights))

	var h http.Handler = mux
	h = s.detector.Middleware(s.logger)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = log.Middleware(s.logger, trace.GetRequestID)(h)
	h = s.tracer.Middleware(h)
	return h
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	DetailedErrorResponse(http.StatusTooManyRequests,
		"Rate limit exceeded",
		"Too many requests from this client",
		"Wait a moment before retrying").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
