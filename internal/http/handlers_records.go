package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kharcha/internal/bsdate"
	"kharcha/internal/core"
	"kharcha/internal/services"
)

// recordRequest is the wire form of a record submission. Dates arrive in BS,
// costs as decimal strings straight from the form.
type recordRequest struct {
	ID              int64   `json:"id,omitempty"`
	DateBS          string  `json:"date_bs"`
	BillDateBS      string  `json:"bill_date_bs,omitempty"`
	VehicleNumber   string  `json:"vehicle_number"`
	VehicleType     string  `json:"vehicle_type"`
	MaintenanceCost string  `json:"maintenance_cost"`
	FuelCost        string  `json:"fuel_cost"`
	Distance        float64 `json:"distance_traveled"`
	DriverID        string  `json:"driver_id,omitempty"`
	PaidTo          string  `json:"paid_to,omitempty"`
	BillNumber      string  `json:"bill_number,omitempty"`
	Reason          string  `json:"reason_for_maintenance,omitempty"`
}

// toRecord converts the request to a domain record, collecting field-level
// problems into an InvariantViolation so the form sees them all at once.
func (req recordRequest) toRecord(owner string) (core.ExpenseRecord, error) {
	v := &core.InvariantViolation{}
	rec := core.ExpenseRecord{
		ID:            req.ID,
		Owner:         owner,
		VehicleNumber: strings.TrimSpace(req.VehicleNumber),
		DistanceKM:    req.Distance,
		DriverID:      strings.TrimSpace(req.DriverID),
		PaidTo:        strings.TrimSpace(req.PaidTo),
		BillNumber:    strings.TrimSpace(req.BillNumber),
		Reason:        strings.TrimSpace(req.Reason),
	}

	if d, err := bsdate.Parse(req.DateBS); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "date_bs", Message: "not a valid Bikram Sambat date"})
	} else if ad, err := bsdate.ToAD(d); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "date_bs", Message: "date outside the supported range"})
	} else {
		rec.Date = ad
	}

	if strings.TrimSpace(req.BillDateBS) != "" {
		if d, err := bsdate.Parse(req.BillDateBS); err != nil {
			v.Fields = append(v.Fields, core.FieldError{Field: "bill_date_bs", Message: "not a valid Bikram Sambat date"})
		} else if ad, err := bsdate.ToAD(d); err != nil {
			v.Fields = append(v.Fields, core.FieldError{Field: "bill_date_bs", Message: "date outside the supported range"})
		} else {
			rec.BillDate = ad
		}
	}

	if vt, err := core.ParseVehicleType(req.VehicleType); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "vehicle_type", Message: "must be one of Electric, Petrol, Diesel"})
	} else {
		rec.VehicleType = vt
	}

	if m, err := core.ParseCost(req.MaintenanceCost); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "maintenance_cost", Message: "not a valid amount"})
	} else {
		rec.Maintenance = m
	}
	if f, err := core.ParseCost(req.FuelCost); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "fuel_cost", Message: "not a valid amount"})
	} else {
		rec.Fuel = f
	}

	if len(v.Fields) > 0 {
		return core.ExpenseRecord{}, v
	}
	return rec, nil
}

// handleRecords lists the requester's records on GET and creates a record
// on POST.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost:
		s.createRecord(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	views, err := s.engine.List(r.Context(), requesterFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toRecordJSONs(views)})
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := req.toRecord(requesterFrom(r).Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	id, err := s.records.CreateRecord(r.Context(), rec)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == 0 {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	requester := requesterFrom(r)
	rec, err := req.toRecord(requester.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	err = s.records.UpdateRecord(r.Context(), rec, services.Requester{
		Username: requester.Username,
		Admin:    requester.Admin,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": req.ID})
}

// handleToday returns the current BS date for entry-form prefill.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	today, err := bsdate.Today()
	if err != nil {
		if errors.Is(err, bsdate.ErrOutOfRange) {
			writeError(w, http.StatusInternalServerError, "current date outside supported calendar range")
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"date_bs": today.String()})
}
