package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"kharcha/internal/bsdate"
	"kharcha/internal/core"
)

// Requester identifies who is asking for records. Authentication happens
// upstream; the engine only applies the visibility rule.
type Requester struct {
	Username string
	Admin    bool
}

// Query describes the store-side filter the engine hands to its record
// store. A zero Owner means all owners (admin scope).
type Query struct {
	Owner         string
	Range         DateRange
	DriverID      string
	VehicleNumber string // matched case-insensitively by the store
}

// Store is the engine's port onto the durable record store.
type Store interface {
	ListRecords(ctx context.Context, q Query) ([]core.ExpenseRecord, error)
}

// RecordView wraps a stored record with its BS display dates. The projection
// is computed per request; the persisted entity is never touched.
type RecordView struct {
	core.ExpenseRecord
	DateBS     bsdate.Date
	BillDateBS bsdate.Date
}

// Engine runs the scoped, filtered, ordered record query.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Run resolves the filter against the store for the given requester.
//
// An unusable date range is returned as a *RangeError with no store call
// made; callers branch on it with errors.As and show guidance instead of
// results. Store failures propagate as ordinary errors.
func (e *Engine) Run(ctx context.Context, f Filter, req Requester) ([]RecordView, error) {
	rng, rerr := ParseRange(f.FromBS, f.ToBS)
	if rerr != nil {
		slog.DebugContext(ctx, "report range unusable",
			"reason", string(rerr.Reason),
			"from", f.FromBS,
			"to", f.ToBS)
		return nil, rerr
	}

	q := Query{
		Range:         rng,
		DriverID:      f.DriverID,
		VehicleNumber: f.VehicleNumber,
	}
	// Visibility comes before every other filter: non-admins only ever see
	// their own records.
	if !req.Admin {
		q.Owner = req.Username
	}

	return e.run(ctx, q)
}

// List returns every record visible to the requester, unfiltered. It backs
// the plain records listing, where no date range is asked for.
func (e *Engine) List(ctx context.Context, req Requester) ([]RecordView, error) {
	q := Query{}
	if !req.Admin {
		q.Owner = req.Username
	}
	return e.run(ctx, q)
}

func (e *Engine) run(ctx context.Context, q Query) ([]RecordView, error) {
	records, err := e.store.ListRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	// Newest first, id as tiebreaker, regardless of store ordering.
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})

	return Annotate(ctx, records), nil
}

// Annotate attaches BS display dates to records. Dates outside the supported
// conversion span annotate as the zero Date, which renders empty.
func Annotate(ctx context.Context, records []core.ExpenseRecord) []RecordView {
	views := make([]RecordView, len(records))
	for i, r := range records {
		views[i] = RecordView{ExpenseRecord: r}
		if !r.Date.IsZero() {
			d, err := bsdate.ToBS(r.Date)
			if err != nil {
				slog.WarnContext(ctx, "record date outside BS range", "record_id", r.ID, "error", err)
			} else {
				views[i].DateBS = d
			}
		}
		if !r.BillDate.IsZero() {
			d, err := bsdate.ToBS(r.BillDate)
			if err != nil {
				slog.WarnContext(ctx, "bill date outside BS range", "record_id", r.ID, "error", err)
			} else {
				views[i].BillDateBS = d
			}
		}
	}
	return views
}
