package report

import (
	"sort"

	"kharcha/internal/core"
)

const (
	GroupByDriver  GroupBy = "driver"
	GroupByVehicle GroupBy = "vehicle"
)

type GroupBy string

// NoDriverLabel is the group key for records with no driver assigned.
const NoDriverLabel = "(no driver)"

// AggregateRow is one summary line: a group key with summed cost fields.
type AggregateRow struct {
	Key         string
	Maintenance core.Money
	Fuel        core.Money
	Total       core.Money
}

// Aggregate groups records and sums their cost fields.
//
// Driver grouping keys on the driver display name and returns rows sorted by
// key ascending, matching the stable roster ordering of the report form.
// Vehicle grouping keys on the vehicle number and preserves the first-seen
// order of the input, mirroring the upstream newest-first listing. An empty
// input yields an empty output.
func Aggregate(records []RecordView, groupBy GroupBy) []AggregateRow {
	sums := make(map[string]*AggregateRow)
	var order []string

	for _, r := range records {
		key := r.VehicleNumber
		if groupBy == GroupByDriver {
			key = r.DriverName
			if key == "" {
				key = NoDriverLabel
			}
		}
		row, ok := sums[key]
		if !ok {
			row = &AggregateRow{Key: key}
			sums[key] = row
			order = append(order, key)
		}
		row.Maintenance = row.Maintenance.Add(r.Maintenance)
		row.Fuel = row.Fuel.Add(r.Fuel)
		row.Total = row.Total.Add(r.Total)
	}

	if groupBy == GroupByDriver {
		sort.Strings(order)
	}
	rows := make([]AggregateRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *sums[key])
	}
	return rows
}
