package core

import (
	"errors"
	"testing"
	"time"
)

func validRecord() ExpenseRecord {
	return ExpenseRecord{
		Owner:         "ram",
		Date:          time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC),
		BillDate:      time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "BA-1-1234",
		VehicleType:   Petrol,
		Maintenance:   Money{Paisa: 50000},
		Fuel:          Money{Paisa: 20000},
		PaidTo:        "City Workshop",
		BillNumber:    "B-001",
		Reason:        "brake pads",
	}
}

func TestComputeTotal(t *testing.T) {
	r := validRecord()
	r.ComputeTotal()
	if r.Total.Paisa != 70000 {
		t.Fatalf("Total = %d, want 70000", r.Total.Paisa)
	}
	// A bogus stored total must be overwritten on recompute.
	r.Total = Money{Paisa: 1}
	r.ComputeTotal()
	if r.Total.Paisa != 70000 {
		t.Fatalf("Total after recompute = %d, want 70000", r.Total.Paisa)
	}
}

func TestRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ExpenseRecord)
		field  string
	}{
		{"missing owner", func(r *ExpenseRecord) { r.Owner = "" }, "owner"},
		{"zero date", func(r *ExpenseRecord) { r.Date = time.Time{} }, "date"},
		{"missing vehicle number", func(r *ExpenseRecord) { r.VehicleNumber = " " }, "vehicle_number"},
		{"bad vehicle type", func(r *ExpenseRecord) { r.VehicleType = "Steam" }, "vehicle_type"},
		{"negative fuel", func(r *ExpenseRecord) { r.Fuel = Money{Paisa: -1} }, "fuel_cost"},
		{"both costs zero", func(r *ExpenseRecord) {
			r.Maintenance = Money{}
			r.Fuel = Money{}
			r.Reason = ""
		}, "maintenance_cost"},
		{"maintenance without reason", func(r *ExpenseRecord) { r.Reason = "" }, "reason_for_maintenance"},
		{"negative distance", func(r *ExpenseRecord) { r.DistanceKM = -1 }, "distance_traveled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			var viol *InvariantViolation
			if !errors.As(err, &viol) {
				t.Fatalf("expected InvariantViolation, got %v", err)
			}
			found := false
			for _, f := range viol.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a message for field %q, got %v", tt.field, viol.Fields)
			}
		})
	}
}

// A fuel-only record needs no maintenance reason.
func TestRecordValidateFuelOnly(t *testing.T) {
	r := validRecord()
	r.Maintenance = Money{}
	r.Reason = ""
	if err := r.Validate(); err != nil {
		t.Fatalf("fuel-only record rejected: %v", err)
	}
}

func TestParseVehicleType(t *testing.T) {
	for _, s := range []string{"Electric", "Petrol", "Diesel"} {
		if _, err := ParseVehicleType(s); err != nil {
			t.Errorf("ParseVehicleType(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "petrol", "Hybrid"} {
		if _, err := ParseVehicleType(s); !errors.Is(err, ErrInvalidVehicleType) {
			t.Errorf("ParseVehicleType(%q) expected ErrInvalidVehicleType", s)
		}
	}
}

func TestDriverValidate(t *testing.T) {
	if err := (Driver{DriverID: "D-1", Name: "Ram"}).Validate(); err != nil {
		t.Fatalf("valid driver rejected: %v", err)
	}
	if err := (Driver{Name: "Ram"}).Validate(); err == nil {
		t.Fatal("expected error for missing driver id")
	}
	if err := (Driver{DriverID: "D-1"}).Validate(); err == nil {
		t.Fatal("expected error for missing name")
	}
}
