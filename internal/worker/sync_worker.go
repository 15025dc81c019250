// Package worker pushes saved expense records to the accountant ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/report"
	"kharcha/internal/sheets"
)

// RecordStore is the slice of the repository the worker needs.
type RecordStore interface {
	GetRecord(ctx context.Context, id int64) (core.ExpenseRecord, error)
	GetPendingSyncRecords(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker copies records from SQLite to the ledger. The AMQP queue is the
// fast path; the pending scan recovers anything a lost message left behind.
type SyncWorker struct {
	store     RecordStore
	ledger    sheets.LedgerWriter
	batchSize int
}

func NewSyncWorker(store RecordStore, ledger sheets.LedgerWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	rec, err := w.store.GetRecord(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	if err := w.syncRecordToLedger(ctx, rec); err != nil {
		return fmt.Errorf("sync record to ledger: %w", err)
	}

	return nil
}

// ProcessPendingRecords syncs records still marked pending. This is the
// backup mechanism for lost AMQP messages.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, rec := range pending {
		if err := w.syncRecordToLedger(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", rec.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncRecords(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, rec := range pending {
		if err := w.syncRecordToLedger(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup",
				"id", rec.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncRecordToLedger(ctx context.Context, rec core.ExpenseRecord) error {
	views := report.Annotate(ctx, []core.ExpenseRecord{rec})

	ref, err := w.ledger.AppendRecord(ctx, views[0])
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkSynced(ctx, rec.ID); err != nil {
		// The append itself succeeded, so don't fail the message
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Record synced to ledger",
		"id", rec.ID,
		"ledger_ref", ref,
		"vehicle_number", rec.VehicleNumber,
		"total_paisa", rec.Total.Paisa)

	return nil
}
