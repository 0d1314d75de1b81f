package report

import (
	"fmt"
	"strings"

	"battery-buddy/internal/summary"
)

// Fallback builds the deterministic report text used whenever the
// narrator is unavailable. It must work from the summary fields alone so
// the user-visible flow always completes.
func Fallback(s summary.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔋 *Battery report for %s*\n\n", s.Date)
	fmt.Fprintf(&b, "*Solar production:* %.1f kWh\n", s.TotalSolar)
	fmt.Fprintf(&b, "*Savings:* %.2f€\n", s.Savings)
	fmt.Fprintf(&b, "*Battery charged:* %.1f kWh\n", s.BatteryCharged)
	fmt.Fprintf(&b, "*Battery discharged:* %.1f kWh\n", s.BatteryDischarged)
	fmt.Fprintf(&b, "*Peak price:* %.2f€/kWh at %s\n", s.PeakPrice, s.PeakPriceTime)
	if s.SunHoursTomorrow != nil {
		fmt.Fprintf(&b, "\n*Expected tomorrow:* %.1f sun hours ☀️\n", *s.SunHoursTomorrow)
	}
	return b.String()
}
