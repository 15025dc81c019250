package report

import (
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		from, to   string
		wantReason RangeReason // "" = usable
	}{
		{"valid range", "2082-01-01", "2082-01-31", ""},
		{"missing from", "", "2082-01-01", MissingBound},
		{"missing to", "2082-01-01", "", MissingBound},
		{"literal None", "None", "2082-01-01", MissingBound},
		{"whitespace only", "  ", "2082-01-01", MissingBound},
		{"two components", "2082-01", "2082-01-10", MalformedDate},
		{"four components", "2082-01-01-01", "2082-01-10", MalformedDate},
		{"non-integer component", "2082-xx-01", "2082-01-10", MalformedDate},
		{"month thirteen", "2082-13-01", "2082-01-10", InvalidCalendarDate},
		{"day past month end", "2082-01-31", "2082-02-01", InvalidCalendarDate}, // Baishakh 2082 has 30 days
		{"year before table", "1990-01-01", "2082-01-10", InvalidCalendarDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, rerr := ParseRange(tt.from, tt.to)
			if tt.wantReason == "" {
				if rerr != nil {
					t.Fatalf("ParseRange(%q, %q) unusable: %v", tt.from, tt.to, rerr)
				}
				if rng.From.IsZero() || rng.To.IsZero() {
					t.Fatalf("usable range has zero bound: %+v", rng)
				}
				return
			}
			if rerr == nil {
				t.Fatalf("ParseRange(%q, %q) expected reason %s, got usable range", tt.from, tt.to, tt.wantReason)
			}
			if rerr.Reason != tt.wantReason {
				t.Fatalf("reason = %s, want %s", rerr.Reason, tt.wantReason)
			}
			if rerr.Message() == "" {
				t.Fatal("unusable range must carry guidance text")
			}
		})
	}
}

// A reversed range is usable; it just matches nothing downstream. The parser
// must not reorder the user's bounds.
func TestParseRangeReversed(t *testing.T) {
	rng, rerr := ParseRange("2082-01-10", "2082-01-01")
	if rerr != nil {
		t.Fatalf("reversed range unusable: %v", rerr)
	}
	if !rng.From.After(rng.To) {
		t.Fatalf("bounds were reordered: from=%s to=%s", rng.From, rng.To)
	}
}

func TestParseRangeBSEcho(t *testing.T) {
	rng, rerr := ParseRange("2082-01-01", "2082-12-30")
	if rerr != nil {
		t.Fatal(rerr)
	}
	if rng.FromBS.String() != "2082-01-01" || rng.ToBS.String() != "2082-12-30" {
		t.Fatalf("BS echoes = %s..%s", rng.FromBS, rng.ToBS)
	}
}

func TestParseAction(t *testing.T) {
	valid := map[string]Action{
		"":            ActionView,
		"view":        ActionView,
		"csv":         ActionCSV,
		"summary":     ActionSummary,
		"summary_csv": ActionSummaryCSV,
	}
	for in, want := range valid {
		got, err := ParseAction(in)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseAction(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseAction("download"); err == nil {
		t.Error("ParseAction(download) expected error")
	}

	if !ActionSummaryCSV.IsSummary() || !ActionSummaryCSV.IsCSV() {
		t.Error("summary_csv must be both summary and csv")
	}
	if ActionView.IsSummary() || ActionView.IsCSV() {
		t.Error("view is neither summary nor csv")
	}
}
