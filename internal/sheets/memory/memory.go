// Package memory is an in-process LedgerWriter for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kharcha/internal/report"
	ports "kharcha/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows []report.RecordView
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendRecord stores the row and returns a synthetic row reference.
func (l *Ledger) AppendRecord(_ context.Context, v report.RecordView) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, v)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (l *Ledger) Rows() []report.RecordView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]report.RecordView(nil), l.rows...)
}
