package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kassa/internal/amqp"
	"kassa/internal/config"
	applog "kassa/internal/log"
	"kassa/internal/storage"
	"kassa/internal/worker"
)

func main() {
	// Missing .env is fine, the environment wins anyway.
	godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = "kassa-worker"
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	// The server can run without a broker; the worker cannot.
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the event worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open expense store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.New(repo, logger)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- client.Consume(ctx, w.HandleEvent)
	}()

	logger.Info("Starting kassa event worker",
		"queue", cfg.AMQPQueue, "exchange", cfg.AMQPExchange, "db", cfg.SQLiteDBPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
		select {
		case <-consumeErr:
		case <-time.After(10 * time.Second):
			logger.Warn("Consumer did not stop in time")
		}
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Consumer stopped", "error", err)
			os.Exit(1)
		}
	}

	stats := w.Stats()
	logger.Info("Worker stopped gracefully",
		"processed", stats.Processed, "skipped", stats.Skipped)
}
