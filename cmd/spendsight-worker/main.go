package main

import (
	"context"
	"errors"
	"os"

	"spendsight/internal/cli"
	"spendsight/internal/log"
	"spendsight/internal/sheets"
	gsheet "spendsight/internal/sheets/google"
	"spendsight/internal/webhook"
	"spendsight/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting spendsight-worker", log.FieldOperation, log.OpStartup)

	client := cli.InitAMQP(logger, cfg)
	if client == nil {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// Targets stay nil interfaces when not configured.
	var notifier worker.ExpenseNotifier
	if cfg.N8NExpenseWebhookURL != "" {
		notifier = webhook.NewNotifier(cfg.N8NExpenseWebhookURL, nil)
		logger.Info("Webhook notifications enabled")
	}

	var mirror sheets.ExpenseWriter
	if cfg.SheetsEnabled() {
		sc, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirror = sc
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	w := worker.NewNotifyWorker(notifier, mirror, logger)
	if w.Targets() == 0 {
		logger.Warn("No targets configured, messages will be acknowledged without delivery")
	}

	err := client.ConsumeExpenseCreated(ctx, w.HandleExpenseCreated)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
}
