package interfaces

import "battery-buddy/internal/telemetry"

// ChartRenderer draws charts directly over raw telemetry rows.
type ChartRenderer interface {
	// Render draws the daily energy-flow chart and returns PNG bytes.
	Render(rows []telemetry.Row) ([]byte, error)
	// RenderWithSOC draws the energy-flow chart with the state-of-charge
	// trace overlaid.
	RenderWithSOC(rows []telemetry.Row) ([]byte, error)
}
