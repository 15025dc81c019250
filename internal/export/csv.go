// Package export renders report results as CSV. Output is deterministic:
// rows are written in the order received and never re-sorted here.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"kharcha/internal/report"
)

var rawHeader = []string{
	"Date (BS)",
	"Vehicle Number",
	"Type",
	"Maintenance Cost",
	"Fuel Cost",
	"Total Cost",
	"Distance Traveled",
	"Driver",
	"Paid To",
	"Bill Number",
	"Bill Date (BS)",
	"Reason for Maintenance",
}

// WriteRaw writes one CSV row per record, preceded by the fixed header. An
// empty record set yields the header row alone. BS dates render zero-padded
// YYYY-MM-DD or empty; a missing driver renders as an empty field.
func WriteRaw(w io.Writer, views []report.RecordView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rawHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range views {
		row := []string{
			v.DateBS.String(),
			v.VehicleNumber,
			string(v.VehicleType),
			v.Maintenance.String(),
			v.Fuel.String(),
			v.Total.String(),
			strconv.FormatFloat(v.DistanceKM, 'f', 2, 64),
			v.DriverName,
			v.PaidTo,
			v.BillNumber,
			v.BillDateBS.String(),
			v.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", v.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryHeader(groupBy report.GroupBy) []string {
	if groupBy == report.GroupByVehicle {
		return []string{"Vehicle", "Maintenance", "Fuel", "Total"}
	}
	return []string{"Driver", "Total Maintenance", "Total Fuel", "Total Cost"}
}

// WriteSummary writes one CSV row per aggregate group in the order received.
func WriteSummary(w io.Writer, rows []report.AggregateRow, groupBy report.GroupBy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader(groupBy)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		row := []string{r.Key, r.Maintenance.String(), r.Fuel.String(), r.Total.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write group %q: %w", r.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds the download name for an export, stamped with the BS range
// so successive exports of different periods never collide.
func FileName(action report.Action, groupBy report.GroupBy, rng report.DateRange) string {
	base := "vehicle_records"
	if action.IsSummary() {
		base = "vehicle_summary_" + string(groupBy)
	}
	if rng.FromBS.IsZero() || rng.ToBS.IsZero() {
		return base + ".csv"
	}
	return fmt.Sprintf("%s_%s_%s.csv", base, rng.FromBS, rng.ToBS)
}
