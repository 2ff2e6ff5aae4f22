package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsight/internal/cache"
	"spendsight/internal/cli"
	"spendsight/internal/core"
	apphttp "spendsight/internal/http"
	"spendsight/internal/llm"
	"spendsight/internal/log"
	"spendsight/internal/services"
)

const (
	listCacheSize     = 64
	listCacheTTL      = 2 * time.Minute
	cacheSweepEvery   = 5 * time.Minute
	shutdownTimeout   = 30 * time.Second
	aiRouteWriteSlack = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.LogLevel)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ai := cli.InitInsights(logger, cfg)

	// Publishing is optional. Keep the interface nil when there is no broker.
	var publisher services.Publisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	} else {
		logger.Info("AMQP disabled, expense events will not be published")
	}

	lists := cache.NewExpenseLists(listCacheSize, listCacheTTL)
	manager := cache.NewManager(logger.WithComponent(log.ComponentApp))
	manager.Register(lists)

	expenses := services.NewExpenseService(repo, publisher, lists, logger)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:        ":" + cfg.Port,
		PingMessage: cfg.PingMessage,
		DefaultBudget: core.Budget{
			Monthly:     cfg.DefaultMonthlyBudget,
			Weekly:      cfg.DefaultWeeklyBudget,
			SavingsGoal: cfg.DefaultSavingsGoal,
		},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CredentialName:     llm.KeyName(cfg.LLMProvider),
		WriteTimeout:       cfg.LLMTimeout + aiRouteWriteSlack,
	}, apphttp.Deps{
		Expenses: expenses,
		Income:   repo,
		Budget:   repo,
		DB:       repo,
		Insights: ai,
		Lists:    lists,
		Logger:   logger,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendsight server", "port", cfg.Port, "ai_configured", ai.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return manager.Run(gctx, cacheSweepEvery)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
