// Package bsdate converts between the Bikram Sambat (BS) calendar used for
// all user-facing date entry and the Gregorian (AD) calendar used for
// storage. Conversion is a pure table lookup; no date is ever persisted in BS
// form.
package bsdate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformed means the input text is not in YYYY-MM-DD form.
	ErrMalformed = errors.New("malformed Bikram Sambat date")

	// ErrInvalidDate means the BS year/month/day does not name a real
	// calendar date (bad month, or day past that month's length).
	ErrInvalidDate = errors.New("invalid Bikram Sambat date")

	// ErrOutOfRange means the AD date falls outside the supported span of
	// the conversion table.
	ErrOutOfRange = errors.New("date outside supported Bikram Sambat range")
)

// Date is a calendar date in the Bikram Sambat calendar. It exists only for
// input parsing and display.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the date as zero-padded YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Validate reports whether d names a real date in the supported range.
func (d Date) Validate() error {
	if d.Year < MinYear || d.Year > MaxYear {
		return fmt.Errorf("%w: year %d not in [%d, %d]", ErrInvalidDate, d.Year, MinYear, MaxYear)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, d.Month)
	}
	if d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, d.Day, d.Year, d.Month)
	}
	return nil
}

// Parse reads a "YYYY-MM-DD" BS date string and validates it.
func Parse(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// ToAD converts a BS date to the equivalent Gregorian date (midnight UTC).
func ToAD(d Date) (time.Time, error) {
	if err := d.Validate(); err != nil {
		return time.Time{}, err
	}
	days := yearStart[d.Year-MinYear]
	for m := 1; m < d.Month; m++ {
		days += daysInMonth(d.Year, m)
	}
	days += d.Day - 1
	return anchorAD.AddDate(0, 0, days), nil
}

// ToBS converts a Gregorian date to its BS equivalent. Only the year, month
// and day of t are significant; the location is ignored.
func ToBS(t time.Time) (Date, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(day.Sub(anchorAD).Hours() / 24)
	if offset < 0 || offset >= yearStart[len(yearStart)-1] {
		return Date{}, fmt.Errorf("%w: %s", ErrOutOfRange, day.Format("2006-01-02"))
	}

	year := MinYear
	for year < MaxYear && yearStart[year-MinYear+1] <= offset {
		year++
	}
	offset -= yearStart[year-MinYear]

	month := 1
	for offset >= daysInMonth(year, month) {
		offset -= daysInMonth(year, month)
		month++
	}
	return Date{Year: year, Month: month, Day: offset + 1}, nil
}

// Today returns the current date in the BS calendar. New records are stamped
// with this when the entry form is pre-filled.
func Today() (Date, error) {
	return ToBS(time.Now())
}
