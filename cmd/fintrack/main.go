package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.DataBackend {
	case "memory":
		store = storage.NewMemoryStore()
		logger.Info("Initialized memory backend")
	default:
		store, err = storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	}

	// Ledger events are optional; without AMQP the service runs standalone
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedger(store, amqpClient)
	defer ledger.Close()

	balances := services.NewBalanceCalculator(store)
	agg := services.NewAggregator(store)
	snapshots := services.NewSnapshotter(store, balances)
	recurring := services.NewRecurringProcessor(store, ledger)
	budgets := services.NewBudgetEvaluator(store, agg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup tasks: materialize due recurring rules, then snapshot net
	// worth. Rule processing goes first because it can append transactions
	// the snapshot should see.
	now := time.Now().UTC()
	if count, err := recurring.Process(ctx, now); err != nil {
		logger.Error("Startup recurring processing failed", "error", err)
	} else {
		logger.Info("Startup recurring processing complete", "created", count)
	}
	if _, err := snapshots.RecordSnapshot(ctx, now); err != nil {
		logger.Error("Startup net worth snapshot failed", "error", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:    ledger,
		Balances:  balances,
		Agg:       agg,
		Snapshots: snapshots,
		Recurring: recurring,
		Budgets:   budgets,
	}, cfg.CORSOrigins)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
