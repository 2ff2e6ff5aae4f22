package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"spendsight/internal/llm"
)

type Config struct {
	// HTTP Server
	Port        string
	LogLevel    string
	PingMessage string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// LLM
	LLMProvider     string
	GroqAPIKey      string
	GroqModel       string
	GroqBaseURL     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration

	// Budget defaults, used until the user stores their own
	CurrencySymbol       string
	DefaultMonthlyBudget float64
	DefaultWeeklyBudget  float64
	DefaultSavingsGoal   float64

	// Worker targets
	N8NExpenseWebhookURL     string
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Rate limiting
	RateLimitPerMinute int
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PingMessage: getEnv("PING_MESSAGE", "ping"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendsight.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_created"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", llm.ProviderGroq)),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqModel:       getEnv("GROQ_MODEL", llm.DefaultGroqModel),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", llm.DefaultGroqBaseURL),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", llm.DefaultAnthropicModel),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		CurrencySymbol:       getEnv("CURRENCY_SYMBOL", "₹"),
		DefaultMonthlyBudget: getEnvFloat("DEFAULT_MONTHLY_BUDGET", 20000),
		DefaultWeeklyBudget:  getEnvFloat("DEFAULT_WEEKLY_BUDGET", 5000),
		DefaultSavingsGoal:   getEnvFloat("DEFAULT_SAVINGS_GOAL", 5000),

		N8NExpenseWebhookURL:     getEnv("N8N_EXPENSE_WEBHOOK_URL", ""),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return cfg
}

// LLM returns the provider settings for the selected provider.
func (c *Config) LLM() llm.Config {
	out := llm.Config{Provider: c.LLMProvider, Timeout: c.LLMTimeout}
	switch c.LLMProvider {
	case llm.ProviderAnthropic:
		out.APIKey = c.AnthropicAPIKey
		out.Model = c.AnthropicModel
	default:
		out.APIKey = c.GroqAPIKey
		out.Model = c.GroqModel
		out.BaseURL = c.GroqBaseURL
	}
	return out
}

// SheetsEnabled reports whether the worker should mirror expenses to a spreadsheet.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate SQLite configuration
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate LLM provider. A missing API key is reported per request, not here.
	validProviders := []string{llm.ProviderGroq, llm.ProviderAnthropic}
	if !slices.Contains(validProviders, c.LLMProvider) {
		errors = append(errors, fmt.Sprintf("invalid LLM provider '%s': must be one of %v", c.LLMProvider, validProviders))
	}
	if c.LLMTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid LLM timeout %v: must be at least 1 second", c.LLMTimeout))
	} else if c.LLMTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid LLM timeout %v: must be at most 5 minutes", c.LLMTimeout))
	}
	if c.GroqBaseURL != "" {
		if u, err := url.Parse(c.GroqBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid Groq base URL '%s'", c.GroqBaseURL))
		}
	}

	// Validate budget defaults
	if c.DefaultMonthlyBudget < 0 || c.DefaultWeeklyBudget < 0 || c.DefaultSavingsGoal < 0 {
		errors = append(errors, "default budget values cannot be negative")
	}

	// Validate webhook URL if provided
	if c.N8NExpenseWebhookURL != "" {
		if u, err := url.Parse(c.N8NExpenseWebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid n8n webhook URL '%s': must be http or https", c.N8NExpenseWebhookURL))
		}
	}

	// Validate Google Sheets configuration if a spreadsheet is set
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided when GOOGLE_SPREADSHEET_ID is set")
		} else if c.GoogleServiceAccountJSON == "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate rate limit
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
