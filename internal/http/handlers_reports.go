package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"kharcha/internal/export"
	"kharcha/internal/report"
)

// handleReports runs the date-scoped record query and renders it as a JSON
// listing, a JSON summary, or a CSV download depending on the action.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	action, err := report.ParseAction(q.Get("action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupBy, err := parseGroupBy(q.Get("group_by"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := report.Filter{
		FromBS:        q.Get("from_date"),
		ToBS:          q.Get("to_date"),
		DriverID:      strings.TrimSpace(q.Get("driver")),
		VehicleNumber: strings.TrimSpace(q.Get("vehicle_number")),
		Action:        action,
	}

	views, err := s.engine.Run(r.Context(), filter, requesterFrom(r))
	if err != nil {
		// An unusable range is guidance, not failure: the page renders empty
		// with a message instead of erroring.
		var rangeErr *report.RangeError
		if errors.As(err, &rangeErr) {
			writeJSON(w, http.StatusOK, map[string]any{
				"results": []recordJSON{},
				"message": rangeErr.Message(),
			})
			return
		}
		writeDomainError(w, r, err)
		return
	}

	switch action {
	case report.ActionView:
		writeJSON(w, http.StatusOK, map[string]any{"results": toRecordJSONs(views)})
	case report.ActionSummary:
		writeSummaryJSON(w, views, groupBy)
	case report.ActionCSV, report.ActionSummaryCSV:
		s.writeCSV(w, r, views, action, groupBy, filter)
	}
}

func parseGroupBy(s string) (report.GroupBy, error) {
	switch report.GroupBy(strings.TrimSpace(s)) {
	case "", report.GroupByDriver:
		return report.GroupByDriver, nil
	case report.GroupByVehicle:
		return report.GroupByVehicle, nil
	}
	return "", fmt.Errorf("unknown group_by %q", s)
}

type summaryRowJSON struct {
	Key         string `json:"key"`
	Maintenance string `json:"maintenance_cost"`
	Fuel        string `json:"fuel_cost"`
	Total       string `json:"total_cost"`
}

func writeSummaryJSON(w http.ResponseWriter, views []report.RecordView, groupBy report.GroupBy) {
	rows := report.Aggregate(views, groupBy)
	out := make([]summaryRowJSON, len(rows))
	for i, row := range rows {
		out[i] = summaryRowJSON{
			Key:         row.Key,
			Maintenance: row.Maintenance.String(),
			Fuel:        row.Fuel.String(),
			Total:       row.Total.String(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"group_by": string(groupBy),
		"results":  out,
	})
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, views []report.RecordView, action report.Action, groupBy report.GroupBy, filter report.Filter) {
	// Re-derive the BS bounds for the download name. The engine already
	// proved the range usable, so errors cannot occur here.
	rng, _ := report.ParseRange(filter.FromBS, filter.ToBS)
	name := export.FileName(action, groupBy, rng)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	var err error
	if action.IsSummary() {
		err = export.WriteSummary(w, report.Aggregate(views, groupBy), groupBy)
	} else {
		err = export.WriteRaw(w, views)
	}
	if err != nil {
		// Headers are gone; all we can do is log
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err, "file", name)
	}
}
