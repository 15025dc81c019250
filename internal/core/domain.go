package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Electric VehicleType = "Electric"
	Petrol   VehicleType = "Petrol"
	Diesel   VehicleType = "Diesel"
)

type (
	VehicleType string

	Money struct {
		Paisa int64
	}

	// ExpenseRecord is one operating-expense entry for a vehicle. Dates are
	// stored in AD; BS forms exist only as display projections.
	ExpenseRecord struct {
		ID            int64
		Owner         string // username of the submitting user
		Date          time.Time
		BillDate      time.Time
		VehicleNumber string
		VehicleType   VehicleType
		Maintenance   Money
		Fuel          Money
		Total         Money // derived: Maintenance + Fuel, recomputed on save
		DistanceKM    float64
		DriverID      string // external driver identifier, "" when none
		DriverName    string // display name resolved by the store, "" when none
		PaidTo        string
		BillNumber    string
		Reason        string // reason for maintenance, may be empty
	}

	Driver struct {
		DriverID string
		Name     string
	}
)

var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// ParseVehicleType maps a form value to a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(strings.TrimSpace(s)) {
	case Electric:
		return Electric, nil
	case Petrol:
		return Petrol, nil
	case Diesel:
		return Diesel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

// InvariantViolation rejects a record before persistence. It carries one
// message per offending field so the form can highlight them.
type InvariantViolation struct {
	Fields []FieldError
}

func (v *InvariantViolation) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "record invariant violation: " + strings.Join(msgs, "; ")
}

func (v *InvariantViolation) add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// ComputeTotal recomputes the derived total cost. Called on every save so
// the stored total can never drift from its parts.
func (r *ExpenseRecord) ComputeTotal() {
	r.Total = Money{Paisa: r.Maintenance.Paisa + r.Fuel.Paisa}
}

// Validate enforces the record invariants. It runs on every save, after
// ComputeTotal.
func (r ExpenseRecord) Validate() error {
	v := &InvariantViolation{}

	if strings.TrimSpace(r.Owner) == "" {
		v.add("owner", "owning user is required")
	}
	if r.Date.IsZero() {
		v.add("date", "date is required")
	}
	if strings.TrimSpace(r.VehicleNumber) == "" {
		v.add("vehicle_number", "vehicle number is required")
	}
	if _, err := ParseVehicleType(string(r.VehicleType)); err != nil {
		v.add("vehicle_type", "must be one of Electric, Petrol, Diesel")
	}
	if r.Maintenance.Paisa < 0 {
		v.add("maintenance_cost", "cannot be negative")
	}
	if r.Fuel.Paisa < 0 {
		v.add("fuel_cost", "cannot be negative")
	}
	if r.Maintenance.Paisa == 0 && r.Fuel.Paisa == 0 {
		v.add("maintenance_cost", "at least one of maintenance or fuel cost must be non-zero")
	}
	if r.Maintenance.Paisa > 0 && strings.TrimSpace(r.Reason) == "" {
		v.add("reason_for_maintenance", "required when maintenance cost is non-zero")
	}
	if r.DistanceKM < 0 {
		v.add("distance_traveled", "cannot be negative")
	}

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

func (d Driver) Validate() error {
	if strings.TrimSpace(d.DriverID) == "" {
		return errors.New("driver id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("driver name is required")
	}
	return nil
}
