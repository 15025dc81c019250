package sheets

import (
	"context"

	"kharcha/internal/report"
)

// LedgerWriter is the outbound port for the accountant ledger. Rows carry
// BS display dates, matching what the accountant reads on paper.
type LedgerWriter interface {
	AppendRecord(ctx context.Context, v report.RecordView) (rowRef string, err error)
}
