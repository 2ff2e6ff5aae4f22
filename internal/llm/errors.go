package llm

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindUnavailable Kind = iota
	KindAuth
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "unavailable"
	}
}

// ProviderError wraps a failed completion call.
type ProviderError struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case KindAuth:
		return "AI service authentication failed. Please check your " + KeyName(e.Provider) + " configuration"
	case KindRateLimit:
		return "AI service rate limit reached: " + e.Err.Error()
	default:
		return "AI service unavailable: " + e.Err.Error()
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the same call may succeed later without reconfiguration.
func (e *ProviderError) Retryable() bool { return e.Kind != KindAuth }

// IsKind reports whether err is a ProviderError of kind k.
func IsKind(err error, k Kind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == k
}

var messageRules = []struct {
	kind     Kind
	patterns []string
}{
	{KindAuth, []string{"api key", "authentication", "unauthorized", "forbidden", "401", "403"}},
	{KindRateLimit, []string{"rate limit", "rate_limit", "too many requests", "429"}},
}

// classify turns an SDK error into a ProviderError. The HTTP status wins when
// the SDK exposes one; otherwise the message text decides.
func classify(provider string, status int, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, Kind: KindUnavailable, Status: status, Err: err}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		pe.Kind = KindAuth
		return pe
	case http.StatusTooManyRequests:
		pe.Kind = KindRateLimit
		return pe
	}
	if status != 0 {
		return pe
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, p) {
				pe.Kind = rule.kind
				return pe
			}
		}
	}
	return pe
}
