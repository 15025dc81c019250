// Package report implements the reporting pipeline: BS date-range filtering,
// scoped record queries, and cost aggregation by driver or vehicle.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kharcha/internal/bsdate"
)

// Reasons a date-range filter can be unusable. Reports never run against an
// unbounded range, so any of these short-circuits the query.
const (
	MissingBound        RangeReason = "missing_bound"
	MalformedDate       RangeReason = "malformed_date"
	InvalidCalendarDate RangeReason = "invalid_calendar_date"
)

type RangeReason string

// RangeError marks a from/to pair that cannot produce a usable AD range.
// It is a recoverable filter outcome, not a fatal condition: callers show
// guidance and skip the query.
type RangeError struct {
	Reason RangeReason
	Bound  string // the offending input, "" for MissingBound
}

func (e *RangeError) Error() string {
	switch e.Reason {
	case MissingBound:
		return "date range: both from and to dates are required"
	case MalformedDate:
		return fmt.Sprintf("date range: %q is not a YYYY-MM-DD date", e.Bound)
	case InvalidCalendarDate:
		return fmt.Sprintf("date range: %q is not a valid Bikram Sambat date", e.Bound)
	}
	return "date range: unusable"
}

// Message is the user-facing guidance text for an unusable range.
func (e *RangeError) Message() string { return e.Error() }

// DateRange is an inclusive AD interval derived from two BS input strings.
// A reversed range (From after To) is legal and simply matches no records;
// the user's bounds are never reordered on their behalf.
type DateRange struct {
	From time.Time
	To   time.Time

	// BS echoes of the parsed bounds, kept for display and file naming.
	FromBS bsdate.Date
	ToBS   bsdate.Date
}

// ParseRange converts a pair of BS "YYYY-MM-DD" strings into an AD range.
// Empty strings and the literal "None" count as not provided.
func ParseRange(fromStr, toStr string) (DateRange, *RangeError) {
	if !provided(fromStr) || !provided(toStr) {
		return DateRange{}, &RangeError{Reason: MissingBound}
	}

	from, fromBS, rerr := parseBound(fromStr)
	if rerr != nil {
		return DateRange{}, rerr
	}
	to, toBS, rerr := parseBound(toStr)
	if rerr != nil {
		return DateRange{}, rerr
	}

	return DateRange{From: from, To: to, FromBS: fromBS, ToBS: toBS}, nil
}

func provided(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "None"
}

func parseBound(s string) (time.Time, bsdate.Date, *RangeError) {
	s = strings.TrimSpace(s)
	bs, err := bsdate.Parse(s)
	if err != nil {
		if errors.Is(err, bsdate.ErrMalformed) {
			return time.Time{}, bsdate.Date{}, &RangeError{Reason: MalformedDate, Bound: s}
		}
		return time.Time{}, bsdate.Date{}, &RangeError{Reason: InvalidCalendarDate, Bound: s}
	}

	ad, err := bsdate.ToAD(bs)
	if err != nil {
		// Conversion failure degrades the filter, it never raises past here.
		return time.Time{}, bsdate.Date{}, &RangeError{Reason: InvalidCalendarDate, Bound: s}
	}
	return ad, bs, nil
}

// Report actions, the closed set of things a report request can ask for.
const (
	ActionView       Action = "view"
	ActionCSV        Action = "csv"
	ActionSummary    Action = "summary"
	ActionSummaryCSV Action = "summary_csv"
)

type Action string

var ErrUnknownAction = errors.New("unknown report action")

// ParseAction maps the request's action parameter; empty means view.
func ParseAction(s string) (Action, error) {
	switch Action(strings.TrimSpace(s)) {
	case "", ActionView:
		return ActionView, nil
	case ActionCSV:
		return ActionCSV, nil
	case ActionSummary:
		return ActionSummary, nil
	case ActionSummaryCSV:
		return ActionSummaryCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// IsSummary reports whether the action aggregates rather than lists.
func (a Action) IsSummary() bool {
	return a == ActionSummary || a == ActionSummaryCSV
}

// IsCSV reports whether the action produces a file download.
func (a Action) IsCSV() bool {
	return a == ActionCSV || a == ActionSummaryCSV
}

// Filter is the immutable description of one report request. The date
// strings stay raw here; the engine parses them so an unusable range is an
// engine outcome, not a construction failure.
type Filter struct {
	FromBS        string
	ToBS          string
	DriverID      string // exact match, "" = no driver filtering
	VehicleNumber string // case-insensitive match, "" = no vehicle filtering
	Action        Action
}
