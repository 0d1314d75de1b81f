package telemetry

import (
	"fmt"
	"strings"
	"time"
)

// Time wraps time.Time with lenient JSON parsing. Upstream exports write
// timestamps either as RFC 3339 or as "2006-01-02 15:04:05" without a zone.
type Time struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// Row is one sampling interval (nominally hourly) of a single day of
// solar/battery telemetry. JSON field names match the upstream optimizer
// output exactly, including the SOC_opt capitalization.
type Row struct {
	Timestamp Time `json:"timestamp"`

	// Power/energy fields, kW or kWh depending on field.
	PVProfile     float64 `json:"pv_profile"`
	PVUtilized    float64 `json:"pv_utilized_kw_opt"`
	PVToGrid      float64 `json:"pv_to_grid_kw_opt"`
	PVToBattery   float64 `json:"pv_to_battery_kw_opt"`
	GridToBattery float64 `json:"grid_to_battery_kw_opt"`
	BatteryToLoad float64 `json:"battery_to_load_kw_opt"`
	BatteryToGrid float64 `json:"battery_to_grid_kw_opt"`
	GridImport    float64 `json:"grid_import_kw_opt"`
	GridExport    float64 `json:"grid_export_kw_opt"`
	GrossLoad     float64 `json:"gross_load"`
	NetLoad       float64 `json:"net_load"`

	// Price in currency/kWh, any sign.
	ForeignPowerCosts float64 `json:"foreign_power_costs"`

	// Per-step currency deltas, may be negative.
	ElectricitySavingsStep float64 `json:"electricity_savings_step"`
	FeedInRevenueDeltaStep float64 `json:"feed_in_revenue_delta_step"`

	// Battery state of charge, fraction in [0,1].
	SOC float64 `json:"SOC_opt"`
}

// Day returns the calendar date of the row's timestamp.
func (r Row) Day() string {
	return r.Timestamp.Format("2006-01-02")
}

// Clock returns the time of day of the row's timestamp as HH:MM.
func (r Row) Clock() string {
	return r.Timestamp.Format("15:04")
}
