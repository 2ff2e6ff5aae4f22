package insights_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
	"spendsight/internal/insights"
	"spendsight/internal/llm"
	"spendsight/internal/llm/mocks"
	"spendsight/internal/log"
)

func newService(t *testing.T) (*insights.Service, *mocks.MockCompleter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockCompleter(ctrl)
	return insights.NewService(m, insights.Config{Currency: "₹"}, log.Nop()), m
}

func thisMonth() []core.Expense {
	now := time.Now()
	return []core.Expense{
		{ID: 1, Description: "Groceries", Amount: core.Money{Cents: 125000}, Category: core.CategoryFood, Date: core.Date{Time: now}},
	}
}

func TestGenerateInsights_NotConfigured(t *testing.T) {
	svc := insights.NewService(nil, insights.Config{CredentialName: "ANTHROPIC_API_KEY"}, log.Nop())
	assert.False(t, svc.Configured())

	_, err := svc.GenerateInsights(context.Background(), thisMonth(), core.Budget{Monthly: 2000})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestGenerateInsights_Success(t *testing.T) {
	svc, m := newService(t)
	m.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (string, error) {
			assert.Equal(t, insights.InsightsSystemPrompt, req.System)
			assert.Equal(t, 0.7, req.Temperature)
			assert.Contains(t, req.User, "- Monthly budget: ₹2,000")
			assert.Contains(t, req.User, "- Made 1 purchases")
			return `[{"type":"budget_alert","title":"Watch food","message":"Food is 62% of budget","severity":"medium","actionable":true}]`, nil
		})

	got, err := svc.GenerateInsights(context.Background(), thisMonth(), core.Budget{Monthly: 2000})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, insights.TypeBudgetAlert, got[0].Type)
	assert.Equal(t, insights.SeverityMedium, got[0].Severity)
}

func TestGenerateInsights_UnparseableReplyIsEmpty(t *testing.T) {
	svc, m := newService(t)
	m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("I cannot help with that.", nil)

	got, err := svc.GenerateInsights(context.Background(), nil, core.Budget{Monthly: 2000})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateInsights_ProviderError(t *testing.T) {
	svc, m := newService(t)
	provErr := &llm.ProviderError{Provider: llm.ProviderGroq, Kind: llm.KindRateLimit, Status: 429, Err: errors.New("slow down")}
	m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", provErr)

	_, err := svc.GenerateInsights(context.Background(), thisMonth(), core.Budget{Monthly: 2000})
	require.Error(t, err)
	assert.True(t, llm.IsKind(err, llm.KindRateLimit))
}

func TestQuickInsights_FirstTwo(t *testing.T) {
	svc, m := newService(t)
	m.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(`{"advice": ["Tip one", "Tip two", "Tip three"]}`, nil)

	got, err := svc.QuickInsights(context.Background(), thisMonth(), core.Budget{Monthly: 2000})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tip one", got[0].Message)
	assert.Equal(t, "Tip two", got[1].Message)
}

func TestSuggestBudget(t *testing.T) {
	t.Run("zero income skips the model", func(t *testing.T) {
		svc, _ := newService(t)
		got := svc.SuggestBudget(context.Background(), 0)
		assert.Zero(t, got.MonthlySpend)
		assert.Zero(t, got.SavingsGoal)
	})

	t.Run("model failure falls back", func(t *testing.T) {
		svc, m := newService(t)
		m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.New("boom"))

		got := svc.SuggestBudget(context.Background(), 5000)
		assert.Equal(t, insights.BudgetSuggestion{
			MonthlySpend: 4000,
			SavingsGoal:  1000,
			Explanation:  insights.BudgetFallbackExplanation,
		}, got)
	})

	t.Run("model reply used", func(t *testing.T) {
		svc, m := newService(t)
		m.EXPECT().
			Complete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req llm.Request) (string, error) {
				assert.Equal(t, 0.6, req.Temperature)
				assert.Equal(t, insights.BudgetSystemPrompt, req.System)
				assert.Contains(t, req.User, "₹5000")
				return `{"monthlySpend": 3000, "savingsGoal": 2000, "explanation": "Save more early."}`, nil
			})

		got := svc.SuggestBudget(context.Background(), 5000)
		assert.Equal(t, 3000.0, got.MonthlySpend)
		assert.Equal(t, 2000.0, got.SavingsGoal)
		assert.Equal(t, "Save more early.", got.Explanation)
	})

	t.Run("unconfigured falls back", func(t *testing.T) {
		svc := insights.NewService(nil, insights.Config{}, log.Nop())
		got := svc.SuggestBudget(context.Background(), 5000)
		assert.Equal(t, insights.BudgetFallbackExplanation, got.Explanation)
	})
}

func TestCategorize(t *testing.T) {
	t.Run("ai result is cached", func(t *testing.T) {
		svc, m := newService(t)
		m.EXPECT().
			Complete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req llm.Request) (string, error) {
				assert.Equal(t, 0.1, req.Temperature)
				assert.Equal(t, insights.CategorizeSystemPrompt, req.System)
				return "Food.", nil
			}).
			Times(1)

		first := svc.Categorize(context.Background(), "Dinner at Luigi's")
		second := svc.Categorize(context.Background(), "  dinner at luigi's ")
		assert.Equal(t, insights.Categorization{Category: core.CategoryFood, Method: insights.MethodAI, Confidence: 0.9}, first)
		assert.Equal(t, first, second)
	})

	t.Run("failure uses keyword rules", func(t *testing.T) {
		svc, m := newService(t)
		m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.New("timeout")).Times(2)

		got := svc.Categorize(context.Background(), "Uber to airport")
		assert.Equal(t, insights.Categorization{Category: core.CategoryTransport, Method: insights.MethodFallback}, got)

		// Fallbacks are not cached.
		svc.Categorize(context.Background(), "Uber to airport")
	})

	t.Run("unknown reply is other", func(t *testing.T) {
		svc, m := newService(t)
		m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("miscellaneous", nil)

		got := svc.Categorize(context.Background(), "thing")
		assert.Equal(t, core.CategoryOther, got.Category)
		assert.Equal(t, insights.MethodAI, got.Method)
	})

	t.Run("unconfigured", func(t *testing.T) {
		svc := insights.NewService(nil, insights.Config{}, log.Nop())
		got := svc.Categorize(context.Background(), "Monthly rent")
		assert.Equal(t, core.CategoryRent, got.Category)
		assert.Equal(t, insights.MethodFallback, got.Method)
	})
}
