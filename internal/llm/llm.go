// Package llm is the boundary to the chat-completion providers used for
// insights, budget suggestions and expense categorisation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"

	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL    = "https://api.groq.com/openai/v1"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// ErrNotConfigured is returned when the provider credential is missing.
var ErrNotConfigured = errors.New("AI provider API key is not configured")

// Request is a single system+user chat completion.
type Request struct {
	System      string
	User        string
	Temperature float64
}

// Completer returns one text completion for a request.
//
//go:generate mockgen -destination=mocks/mock_completer.go -package=mocks -source=llm.go Completer
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the configured provider. A blank API key yields ErrNotConfigured
// without touching the network.
func New(cfg Config) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", KeyName(cfg.Provider), ErrNotConfigured)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case "", ProviderGroq:
		return newGroq(cfg), nil
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

// KeyName is the environment variable holding the credential for provider.
func KeyName(provider string) string {
	if provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "GROQ_API_KEY"
}
