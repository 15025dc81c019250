package bsdate

import (
	"errors"
	"testing"
	"time"
)

func TestToADAnchors(t *testing.T) {
	cases := []struct {
		bs   Date
		want string
	}{
		{Date{2000, 1, 1}, "1943-04-14"},
		{Date{2000, 1, 30}, "1943-05-13"},
		{Date{2000, 2, 1}, "1943-05-14"},  // first month of 2000 has 30 days
		{Date{2001, 1, 1}, "1944-04-13"},  // 2000 BS has 365 days
		{Date{2000, 12, 31}, "1944-04-12"},
		{Date{2082, 1, 1}, "2025-04-14"},
		{Date{2082, 1, 31}, "2025-05-14"}, // Baishakh 2082 has 31 days
		{Date{2082, 2, 1}, "2025-05-15"},
		{Date{2083, 1, 1}, "2026-04-14"}, // 2082 BS has 365 days
	}
	for _, tc := range cases {
		got, err := ToAD(tc.bs)
		if err != nil {
			t.Fatalf("ToAD(%v): %v", tc.bs, err)
		}
		if s := got.Format("2006-01-02"); s != tc.want {
			t.Errorf("ToAD(%v) = %s, want %s", tc.bs, s, tc.want)
		}
	}
}

func TestToADInvalid(t *testing.T) {
	bads := []Date{
		{2082, 13, 1},  // month out of range
		{2082, 0, 1},
		{2082, 1, 0},
		{2082, 1, 32},  // Baishakh 2082 has 31 days
		{1999, 1, 1},   // before supported range
		{2091, 1, 1},   // after supported range
	}
	for _, d := range bads {
		if _, err := ToAD(d); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ToAD(%v) error = %v, want ErrInvalidDate", d, err)
		}
	}
}

func TestToBSOutOfRange(t *testing.T) {
	for _, ad := range []time.Time{
		time.Date(1943, time.April, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC),
	} {
		if _, err := ToBS(ad); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ToBS(%s) error = %v, want ErrOutOfRange", ad.Format("2006-01-02"), err)
		}
	}
}

// Every valid BS date must survive a BS -> AD -> BS round trip.
func TestRoundTrip(t *testing.T) {
	for year := MinYear; year <= MaxYear; year++ {
		for month := 1; month <= 12; month++ {
			for _, day := range []int{1, 15, daysInMonth(year, month)} {
				d := Date{Year: year, Month: month, Day: day}
				ad, err := ToAD(d)
				if err != nil {
					t.Fatalf("ToAD(%v): %v", d, err)
				}
				back, err := ToBS(ad)
				if err != nil {
					t.Fatalf("ToBS(ToAD(%v)): %v", d, err)
				}
				if back != d {
					t.Fatalf("round trip %v -> %s -> %v", d, ad.Format("2006-01-02"), back)
				}
			}
		}
	}
}

// Consecutive BS dates must map to consecutive AD dates across month and
// year boundaries.
func TestContinuity(t *testing.T) {
	prev, err := ToAD(Date{MinYear, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for year := MinYear; year <= MinYear+2; year++ {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= daysInMonth(year, month); day++ {
				if year == MinYear && month == 1 && day == 1 {
					continue
				}
				ad, err := ToAD(Date{year, month, day})
				if err != nil {
					t.Fatal(err)
				}
				if !ad.Equal(prev.AddDate(0, 0, 1)) {
					t.Fatalf("%04d-%02d-%02d BS is %s, expected day after %s",
						year, month, day, ad.Format("2006-01-02"), prev.Format("2006-01-02"))
				}
				prev = ad
			}
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		d    Date
		want string
	}{
		{Date{2082, 1, 5}, "2082-01-05"},
		{Date{2082, 12, 30}, "2082-12-30"},
		{Date{}, ""},
	}
	for _, tc := range cases {
		if got := tc.d.String(); got != tc.want {
			t.Errorf("%#v.String() = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestToday(t *testing.T) {
	d, err := Today()
	if err != nil {
		t.Fatalf("Today(): %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Today() = %v, not a valid date: %v", d, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr error
	}{
		{"2082-03-17", Date{2082, 3, 17}, nil},
		{" 2082-03-17 ", Date{2082, 3, 17}, nil},
		{"2082/03/17", Date{}, ErrMalformed},
		{"2082-03", Date{}, ErrMalformed},
		{"2082-xx-17", Date{}, ErrMalformed},
		{"2082-13-01", Date{}, ErrInvalidDate},
		{"1999-01-01", Date{}, ErrInvalidDate},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Parse(%q) err = %v, want %v", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
