// Package summary computes the per-day metric set from raw telemetry rows.
// It is the single shared implementation consumed by every entry point, so
// the derived metrics cannot drift between the bot and the one-shot report.
package summary

import (
	"fmt"
	"math"

	"battery-buddy/internal/telemetry"
)

// DivisionByZeroError reports a percentage metric whose denominator summed
// to zero. export_ratio_pct is the one deliberately zero-guarded ratio and
// never produces this error.
type DivisionByZeroError struct {
	Metric      string
	Denominator string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("metric %s: denominator %s sums to zero", e.Metric, e.Denominator)
}

// Summary is the flat daily metric set. Field names and rounding match the
// JSON blob handed to the narrator, so it marshals directly into the prompt.
type Summary struct {
	Date                   string  `json:"date"`
	TotalSolar             float64 `json:"total_solar"`
	SolarSelfConsumed      float64 `json:"solar_self_consumed"`
	SolarExported          float64 `json:"solar_exported"`
	BatteryCharged         float64 `json:"battery_charged"`
	BatteryDischarged      float64 `json:"battery_discharged"`
	GridImport             float64 `json:"grid_import"`
	GridExport             float64 `json:"grid_export"`
	Savings                float64 `json:"savings"`
	PeakPriceTime          string  `json:"peak_price_time"`
	PeakPrice              float64 `json:"peak_price"`
	CheapPriceTime         string  `json:"cheap_price_time"`
	CheapPrice             float64 `json:"cheap_price"`
	SunniestHour           string  `json:"sunniest_hour"`
	SolarCoveragePct       float64 `json:"solar_coverage_pct"`
	ExportRatioPct         float64 `json:"export_ratio_pct"`
	BatteryContributionPct float64 `json:"battery_contribution_pct"`
	SOCSwing               float64 `json:"soc_swing"`
	GridDependencePct      float64 `json:"grid_dependence_pct"`

	// SunHoursTomorrow is populated by the report layer from the weather
	// forecast; it is not derived from telemetry.
	SunHoursTomorrow *float64 `json:"sun_hours_tomorrow,omitempty"`
}

// Compute derives the daily metric set from one calendar day of rows.
// Rows must be ordered by timestamp; ties on extremal values resolve to
// the earliest row. The function is pure and idempotent.
func Compute(rows []telemetry.Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, &telemetry.MalformedInputError{Reason: "row set is empty"}
	}

	var (
		totalSolar, selfConsumed, exported float64
		pvToBattery, gridToBattery         float64
		batteryToLoad, batteryToGrid       float64
		gridImport, gridExport             float64
		grossLoad, netLoad                 float64
		savings                            float64
	)

	peakPriceRow := rows[0]
	cheapPriceRow := rows[0]
	sunniestRow := rows[0]
	socMax, socMin := rows[0].SOC, rows[0].SOC

	for _, r := range rows {
		totalSolar += r.PVProfile
		selfConsumed += r.PVUtilized
		exported += r.PVToGrid
		pvToBattery += r.PVToBattery
		gridToBattery += r.GridToBattery
		batteryToLoad += r.BatteryToLoad
		batteryToGrid += r.BatteryToGrid
		gridImport += r.GridImport
		gridExport += r.GridExport
		grossLoad += r.GrossLoad
		netLoad += r.NetLoad
		savings += r.ElectricitySavingsStep + r.FeedInRevenueDeltaStep

		// Strict comparisons keep the first row on ties.
		if r.ForeignPowerCosts > peakPriceRow.ForeignPowerCosts {
			peakPriceRow = r
		}
		if r.ForeignPowerCosts < cheapPriceRow.ForeignPowerCosts {
			cheapPriceRow = r
		}
		if r.PVProfile > sunniestRow.PVProfile {
			sunniestRow = r
		}
		if r.SOC > socMax {
			socMax = r.SOC
		}
		if r.SOC < socMin {
			socMin = r.SOC
		}
	}

	discharged := batteryToLoad + batteryToGrid

	s := Summary{
		Date:              rows[0].Day(),
		TotalSolar:        round1(totalSolar),
		SolarSelfConsumed: round1(selfConsumed),
		SolarExported:     round1(exported),
		BatteryCharged:    round1(pvToBattery + gridToBattery),
		BatteryDischarged: round1(discharged),
		GridImport:        round1(gridImport),
		GridExport:        round1(gridExport),
		Savings:           round2(savings),
		PeakPriceTime:     peakPriceRow.Clock(),
		PeakPrice:         round2(peakPriceRow.ForeignPowerCosts),
		CheapPriceTime:    cheapPriceRow.Clock(),
		CheapPrice:        round2(cheapPriceRow.ForeignPowerCosts),
		SunniestHour:      sunniestRow.Clock(),
		SOCSwing:          round2(socMax - socMin),
	}

	if grossLoad == 0 {
		return Summary{}, &DivisionByZeroError{Metric: "solar_coverage_pct", Denominator: "gross_load"}
	}
	s.SolarCoveragePct = round1(selfConsumed / grossLoad * 100)
	s.GridDependencePct = round1(gridImport / grossLoad * 100)

	// export_ratio_pct is the one explicitly zero-guarded ratio.
	if totalSolar > 0 {
		s.ExportRatioPct = round1(exported / totalSolar * 100)
	}

	if netLoad == 0 {
		return Summary{}, &DivisionByZeroError{Metric: "battery_contribution_pct", Denominator: "net_load"}
	}
	s.BatteryContributionPct = round1(discharged / netLoad * 100)

	return s, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
