// Package services orchestrates record writes across SQLite and AMQP.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kharcha/internal/core"
)

// ErrForbidden means the requester does not own the record and is not an
// admin.
var ErrForbidden = errors.New("forbidden")

// RecordStore is the slice of the repository the service needs.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec core.ExpenseRecord) (int64, error)
	UpdateRecord(ctx context.Context, rec core.ExpenseRecord) error
	GetRecord(ctx context.Context, id int64) (core.ExpenseRecord, error)
}

// SyncPublisher queues a saved record for ledger sync.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id int64) error
}

// Requester mirrors the authenticated caller for write-side checks.
type Requester struct {
	Username string
	Admin    bool
}

type RecordService struct {
	store     RecordStore
	publisher SyncPublisher
}

func NewRecordService(store RecordStore, publisher SyncPublisher) *RecordService {
	return &RecordService{store: store, publisher: publisher}
}

// CreateRecord validates and saves a new record, then queues it for ledger
// sync. The total is always recomputed from its parts before validation.
func (s *RecordService) CreateRecord(ctx context.Context, rec core.ExpenseRecord) (int64, error) {
	rec.ComputeTotal()
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}

	s.publishSync(ctx, id)
	return id, nil
}

// UpdateRecord rewrites an existing record. Non-admins may only touch their
// own records; ownership itself never changes on update.
func (s *RecordService) UpdateRecord(ctx context.Context, rec core.ExpenseRecord, req Requester) error {
	existing, err := s.store.GetRecord(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	if !req.Admin && existing.Owner != req.Username {
		return fmt.Errorf("update record %d: %w", rec.ID, ErrForbidden)
	}

	rec.Owner = existing.Owner
	rec.ComputeTotal()
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateRecord(ctx, rec); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	s.publishSync(ctx, rec.ID)
	return nil
}

// publishSync is best-effort: the record is already durable in SQLite and
// the worker's pending scan will pick it up if the message is lost.
func (s *RecordService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}
