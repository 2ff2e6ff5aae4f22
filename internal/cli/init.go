// Package cli holds the bootstrap steps shared by cmd/spendsight and
// cmd/spendsight-worker.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendsight/internal/amqp"
	"spendsight/internal/config"
	"spendsight/internal/insights"
	"spendsight/internal/llm"
	"spendsight/internal/log"
	"spendsight/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the configured level and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and exits
// the process when it is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the database and applies migrations, exiting on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitInsights builds the insight service. A missing API key leaves the
// service without a model; any other LLM error exits.
func InitInsights(logger *log.Logger, cfg *config.Config) *insights.Service {
	icfg := insights.Config{
		Currency:       cfg.CurrencySymbol,
		CredentialName: llm.KeyName(cfg.LLMProvider),
	}

	completer, err := llm.New(cfg.LLM())
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn("AI features disabled", "missing", icfg.CredentialName, "provider", cfg.LLMProvider)
		return insights.NewService(nil, icfg, logger)
	case err != nil:
		logger.Error("Failed to initialize LLM client", log.FieldError, err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	logger.Info("AI features enabled", "provider", cfg.LLMProvider, "model", cfg.LLM().Model)
	return insights.NewService(completer, icfg, logger)
}

// InitAMQP connects to the broker. It returns nil when AMQP_URL is unset and
// exits when the broker cannot be reached.
func InitAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}
