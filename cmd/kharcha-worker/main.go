package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/config"
	"kharcha/internal/sheets"
	"kharcha/internal/sheets/google"
	"kharcha/internal/sheets/memory"
	"kharcha/internal/storage"
	"kharcha/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var ledger sheets.LedgerWriter
	switch cfg.LedgerBackend {
	case "sheets":
		client, err := google.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleLedgerSheet)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Using Google Sheets ledger", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleLedgerSheet)
	default:
		ledger = memory.New()
		logger.Info("Using in-memory ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, ledger, cfg.SyncBatchSize)

	// Catch up on records that accumulated while the worker was down.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Warn("Startup sync check failed", "error", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecordSync(gctx, func(msg *amqp.RecordSyncMessage) error {
			return syncWorker.HandleSyncMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingRecords(gctx); err != nil {
					logger.Error("Pending record scan failed", "error", err)
				}
			}
		}
	})

	logger.Info("Sync worker started", "queue", cfg.AMQPQueue, "interval", cfg.SyncInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
