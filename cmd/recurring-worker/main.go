package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// recurring-worker runs the recurring processor and the net-worth snapshot on
// an interval, for deployments where the API server is not restarted often
// enough for its startup trigger to keep up.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	ledger := services.NewLedger(store, nil)
	defer ledger.Close()

	balances := services.NewBalanceCalculator(store)
	snapshots := services.NewSnapshotter(store, balances)
	recurring := services.NewRecurringProcessor(store, ledger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	run := func(now time.Time) {
		if count, err := recurring.Process(ctx, now); err != nil {
			logger.Error("Recurring processing failed", "error", err)
		} else {
			logger.Info("Recurring processing complete", "created", count)
		}
		if _, err := snapshots.RecordSnapshot(ctx, now); err != nil {
			logger.Error("Net worth snapshot failed", "error", err)
		}
	}

	// Initial run on startup, then on the ticker
	run(time.Now().UTC())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			run(now.UTC())
		}
	}
}
