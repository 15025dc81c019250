package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/report"
	"kharcha/internal/services"
	"kharcha/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type fieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeDomainError maps the recoverable error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500 with no detail leaked.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var violation *core.InvariantViolation
	if errors.As(err, &violation) {
		fields := make([]fieldErrorJSON, len(violation.Fields))
		for i, f := range violation.Fields {
			fields[i] = fieldErrorJSON{Field: f.Field, Message: f.Message}
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
		return
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "you may only modify your own records")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "username already taken")
	default:
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// recordJSON is the wire form of a record view. Dates render in BS.
type recordJSON struct {
	ID              int64   `json:"id"`
	Owner           string  `json:"owner"`
	DateBS          string  `json:"date_bs"`
	BillDateBS      string  `json:"bill_date_bs,omitempty"`
	VehicleNumber   string  `json:"vehicle_number"`
	VehicleType     string  `json:"vehicle_type"`
	MaintenanceCost string  `json:"maintenance_cost"`
	FuelCost        string  `json:"fuel_cost"`
	TotalCost       string  `json:"total_cost"`
	Distance        float64 `json:"distance_traveled"`
	DriverID        string  `json:"driver_id,omitempty"`
	DriverName      string  `json:"driver_name,omitempty"`
	PaidTo          string  `json:"paid_to,omitempty"`
	BillNumber      string  `json:"bill_number,omitempty"`
	Reason          string  `json:"reason_for_maintenance,omitempty"`
}

func toRecordJSON(v report.RecordView) recordJSON {
	return recordJSON{
		ID:              v.ID,
		Owner:           v.Owner,
		DateBS:          v.DateBS.String(),
		BillDateBS:      v.BillDateBS.String(),
		VehicleNumber:   v.VehicleNumber,
		VehicleType:     string(v.VehicleType),
		MaintenanceCost: v.Maintenance.String(),
		FuelCost:        v.Fuel.String(),
		TotalCost:       v.Total.String(),
		Distance:        v.DistanceKM,
		DriverID:        v.DriverID,
		DriverName:      v.DriverName,
		PaidTo:          v.PaidTo,
		BillNumber:      v.BillNumber,
		Reason:          v.Reason,
	}
}

func toRecordJSONs(views []report.RecordView) []recordJSON {
	out := make([]recordJSON, len(views))
	for i, v := range views {
		out[i] = toRecordJSON(v)
	}
	return out
}
