package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"kharcha/internal/bsdate"
	"kharcha/internal/core"
	"kharcha/internal/report"
)

func sampleView() report.RecordView {
	return report.RecordView{
		ExpenseRecord: core.ExpenseRecord{
			ID:            7,
			Owner:         "ram",
			Date:          time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			VehicleNumber: "BA-1-1234",
			VehicleType:   core.Petrol,
			Maintenance:   core.Money{Paisa: 10000},
			Fuel:          core.Money{Paisa: 25050},
			Total:         core.Money{Paisa: 35050},
			DistanceKM:    120.5,
			DriverName:    "Hari",
			PaidTo:        "City Garage",
			BillNumber:    "B-99",
			Reason:        "brake pads",
		},
		DateBS:     bsdate.Date{Year: 2082, Month: 3, Day: 17},
		BillDateBS: bsdate.Date{Year: 2082, Month: 3, Day: 18},
	}
}

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRaw(&buf, []report.RecordView{sampleView()}); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	rows := readAll(t, &buf)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], rawHeader) {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{
		"2082-03-17", "BA-1-1234", "Petrol",
		"100.00", "250.50", "350.50",
		"120.50", "Hari", "City Garage", "B-99",
		"2082-03-18", "brake pads",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
}

func TestWriteRawEmptyFields(t *testing.T) {
	v := sampleView()
	v.DriverName = ""
	v.BillDateBS = bsdate.Date{}
	v.Reason = ""
	v.Maintenance = core.Money{}
	v.Total = v.Fuel

	var buf bytes.Buffer
	if err := WriteRaw(&buf, []report.RecordView{v}); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	rows := readAll(t, &buf)
	row := rows[1]
	if row[3] != "0.00" {
		t.Errorf("maintenance = %q, want 0.00", row[3])
	}
	if row[7] != "" {
		t.Errorf("driver = %q, want empty", row[7])
	}
	if row[10] != "" {
		t.Errorf("bill date = %q, want empty", row[10])
	}
}

func TestWriteRawEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRaw(&buf, nil); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	rows := readAll(t, &buf)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
}

func TestWriteSummary(t *testing.T) {
	rows := []report.AggregateRow{
		{Key: "Hari", Maintenance: core.Money{Paisa: 10000}, Fuel: core.Money{Paisa: 25000}, Total: core.Money{Paisa: 35000}},
		{Key: "Sita", Maintenance: core.Money{Paisa: 0}, Fuel: core.Money{Paisa: 5000}, Total: core.Money{Paisa: 5000}},
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, rows, report.GroupByDriver); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	got := readAll(t, &buf)
	wantHeader := []string{"Driver", "Total Maintenance", "Total Fuel", "Total Cost"}
	if !reflect.DeepEqual(got[0], wantHeader) {
		t.Errorf("header = %v", got[0])
	}
	if !reflect.DeepEqual(got[1], []string{"Hari", "100.00", "250.00", "350.00"}) {
		t.Errorf("row 1 = %v", got[1])
	}
	if !reflect.DeepEqual(got[2], []string{"Sita", "0.00", "50.00", "50.00"}) {
		t.Errorf("row 2 = %v", got[2])
	}
}

func TestWriteSummaryVehicleHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, nil, report.GroupByVehicle); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	got := readAll(t, &buf)
	want := []string{"Vehicle", "Maintenance", "Fuel", "Total"}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("header = %v", got[0])
	}
}

func TestFileName(t *testing.T) {
	rng := report.DateRange{
		FromBS: bsdate.Date{Year: 2082, Month: 1, Day: 1},
		ToBS:   bsdate.Date{Year: 2082, Month: 3, Day: 31},
	}
	tests := []struct {
		name    string
		action  report.Action
		groupBy report.GroupBy
		rng     report.DateRange
		want    string
	}{
		{"raw with range", report.ActionCSV, "", rng, "vehicle_records_2082-01-01_2082-03-31.csv"},
		{"raw no range", report.ActionCSV, "", report.DateRange{}, "vehicle_records.csv"},
		{"summary driver", report.ActionSummaryCSV, report.GroupByDriver, rng, "vehicle_summary_driver_2082-01-01_2082-03-31.csv"},
		{"summary vehicle no range", report.ActionSummaryCSV, report.GroupByVehicle, report.DateRange{}, "vehicle_summary_vehicle.csv"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FileName(tc.action, tc.groupBy, tc.rng); got != tc.want {
				t.Errorf("FileName = %q, want %q", got, tc.want)
			}
		})
	}
}
