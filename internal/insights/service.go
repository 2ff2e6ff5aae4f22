package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"spendsight/internal/core"
	"spendsight/internal/llm"
	"spendsight/internal/log"
)

const (
	insightsTemperature   = 0.7
	budgetTemperature     = 0.6
	categorizeTemperature = 0.1

	quickInsightCount = 2
)

// Config tunes a Service.
type Config struct {
	Currency       string
	CredentialName string        // reported when no completer is configured
	CategoryTTL    time.Duration // lifetime of cached AI categorisations
}

// Service runs the insight pipeline against an LLM. A nil completer is allowed:
// insight generation then reports llm.ErrNotConfigured while budget
// suggestions and categorisation fall back to local rules.
type Service struct {
	llm        llm.Completer
	composer   *Composer
	cfg        Config
	categories *cache.Cache
	logger     *log.Logger
	now        func() time.Time
}

func NewService(completer llm.Completer, cfg Config, logger *log.Logger) *Service {
	if cfg.CredentialName == "" {
		cfg.CredentialName = llm.KeyName(llm.ProviderGroq)
	}
	if cfg.CategoryTTL <= 0 {
		cfg.CategoryTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		llm:        completer,
		composer:   NewComposer(cfg.Currency),
		cfg:        cfg,
		categories: cache.New(cfg.CategoryTTL, 2*cfg.CategoryTTL),
		logger:     logger.WithComponent(log.ComponentInsights),
		now:        time.Now,
	}
}

// Configured reports whether an LLM is available.
func (s *Service) Configured() bool { return s.llm != nil }

// GenerateInsights asks the model for advice on this month's spending.
// An unparseable reply is not an error: it yields an empty slice.
func (s *Service) GenerateInsights(ctx context.Context, expenses []core.Expense, budget core.Budget) ([]Insight, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%s: %w", s.cfg.CredentialName, llm.ErrNotConfigured)
	}

	summary := Prepare(expenses, budget, s.now())
	prompt := s.composer.Compose(summary, budget)

	start := time.Now()
	raw, err := s.llm.Complete(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: insightsTemperature,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "AI insights request failed",
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds())
		return nil, err
	}

	out := Normalize(raw)
	if len(out) == 0 && strings.TrimSpace(raw) != "" {
		s.logger.WarnContext(ctx, "AI reply contained no recognisable insights",
			"reply_length", len(raw))
	}
	s.logger.InfoContext(ctx, "Generated AI insights",
		log.FieldCount, len(out),
		"month_expenses", summary.TotalExpenses,
		log.FieldDuration, time.Since(start).Milliseconds())
	return out, nil
}

// QuickInsights returns the first two insights for compact views.
func (s *Service) QuickInsights(ctx context.Context, expenses []core.Expense, budget core.Budget) ([]Insight, error) {
	out, err := s.GenerateInsights(ctx, expenses, budget)
	if err != nil {
		return nil, err
	}
	return out[:min(len(out), quickInsightCount)], nil
}

// SuggestBudget recommends a spend/savings split for a monthly income. It
// always returns a usable suggestion.
func (s *Service) SuggestBudget(ctx context.Context, income float64) BudgetSuggestion {
	if income <= 0 || s.llm == nil {
		return FallbackBudget(income)
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		System:      BudgetSystemPrompt,
		User:        BudgetUserPrompt(s.composer.currency, income),
		Temperature: budgetTemperature,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Budget suggestion failed, using fallback", log.FieldError, err)
		return FallbackBudget(income)
	}

	suggestion, ok := ParseBudgetSuggestion(raw, income)
	if !ok {
		s.logger.WarnContext(ctx, "Budget suggestion unparseable, using fallback", "reply_length", len(raw))
		return FallbackBudget(income)
	}
	return suggestion
}

// Categorize picks a category for a description. Without a model, or when the
// call fails, the keyword rules decide.
func (s *Service) Categorize(ctx context.Context, description string) Categorization {
	key := strings.ToLower(strings.TrimSpace(description))
	if cached, ok := s.categories.Get(key); ok {
		return cached.(Categorization)
	}

	fallback := Categorization{Category: core.GuessCategory(description), Method: MethodFallback}
	if s.llm == nil {
		return fallback
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		System:      CategorizeSystemPrompt,
		User:        categorizeUserPrompt(description),
		Temperature: categorizeTemperature,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "AI categorization failed, using keyword rules", log.FieldError, err)
		return fallback
	}

	result := Categorization{Category: parseCategory(raw), Method: MethodAI, Confidence: aiConfidence}
	s.categories.SetDefault(key, result)
	s.logger.DebugContext(ctx, "Categorized expense",
		log.FieldExpenseDesc, description,
		log.FieldCategory, result.Category)
	return result
}
