package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"kharcha/internal/core"
)

type driverJSON struct {
	DriverID string `json:"driver_id"`
	Name     string `json:"name"`
}

// handleDrivers lists the roster on GET. POST adds or renames a driver and
// is admin-only.
func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDrivers(w, r)
	case http.MethodPost:
		s.createDriver(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

const driverCacheKey = "roster"

func (s *Server) listDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, ok := s.driverCache.Get(driverCacheKey)
	if !ok {
		var err error
		drivers, err = s.drivers.ListDrivers(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.driverCache.Set(driverCacheKey, drivers)
	}

	out := make([]driverJSON, len(drivers))
	for i, d := range drivers {
		out[i] = driverJSON{DriverID: d.DriverID, Name: d.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) createDriver(w http.ResponseWriter, r *http.Request) {
	if !requesterFrom(r).Admin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req driverJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d := core.Driver{
		DriverID: strings.TrimSpace(req.DriverID),
		Name:     strings.TrimSpace(req.Name),
	}
	if err := d.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.drivers.CreateDriver(r.Context(), d); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.driverCache.Invalidate(driverCacheKey)

	writeJSON(w, http.StatusCreated, driverJSON{DriverID: d.DriverID, Name: d.Name})
}

// handleDeleteDriver removes a driver from the roster. Their records survive
// with the driver reference cleared.
func (s *Server) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requesterFrom(r).Admin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req struct {
		DriverID string `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.DriverID = strings.TrimSpace(req.DriverID)
	if req.DriverID == "" {
		writeError(w, http.StatusBadRequest, "driver id is required")
		return
	}

	if err := s.drivers.DeleteDriver(r.Context(), req.DriverID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.driverCache.Invalidate(driverCacheKey)

	slog.InfoContext(r.Context(), "Driver removed", "driver_id", req.DriverID)
	writeJSON(w, http.StatusOK, map[string]string{"driver_id": req.DriverID})
}
