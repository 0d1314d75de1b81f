package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// MalformedInputError reports telemetry input that cannot be used for a
// daily computation: an empty row set, or a required field that is absent
// from every row.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed telemetry input: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed telemetry input: %s", e.Reason)
}

// requiredFields are the JSON keys every daily dataset must carry in at
// least one row. Missing values inside individual rows are an upstream
// data-quality concern and pass through unchecked.
var requiredFields = []string{
	"timestamp",
	"pv_profile",
	"pv_utilized_kw_opt",
	"pv_to_grid_kw_opt",
	"pv_to_battery_kw_opt",
	"grid_to_battery_kw_opt",
	"battery_to_load_kw_opt",
	"battery_to_grid_kw_opt",
	"grid_import_kw_opt",
	"grid_export_kw_opt",
	"gross_load",
	"net_load",
	"foreign_power_costs",
	"electricity_savings_step",
	"feed_in_revenue_delta_step",
	"SOC_opt",
}

// Load reads one day of telemetry from a JSON array file.
func Load(path string) ([]Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry file: %w", err)
	}
	rows, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse decodes a JSON array of row objects, verifies the required field
// set and returns the rows in ascending timestamp order.
func Parse(raw []byte) ([]Row, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry JSON: %w", err)
	}
	if len(objects) == 0 {
		return nil, &MalformedInputError{Reason: "row set is empty"}
	}

	seen := make(map[string]bool, len(requiredFields))
	for _, obj := range objects {
		for key := range obj {
			seen[key] = true
		}
	}
	for _, field := range requiredFields {
		if !seen[field] {
			return nil, &MalformedInputError{Field: field, Reason: "is absent from every row"}
		}
	}

	rows := make([]Row, 0, len(objects))
	for i, obj := range objects {
		b, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var r Row
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp.Time)
	})
	return rows, nil
}
