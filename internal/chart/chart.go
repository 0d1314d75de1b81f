// Package chart renders the daily energy-flow chart as a PNG. It operates
// on raw telemetry rows and is independent of the summary computation.
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"battery-buddy/internal/telemetry"
)

var (
	orange     = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	green      = color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
	blue       = color.RGBA{R: 0x1e, G: 0x6f, B: 0xc8, A: 0xff}
	fadedGreen = color.NRGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0x50}
	fadedRed   = color.NRGBA{R: 0xc8, G: 0x32, B: 0x28, A: 0x50}
)

// Renderer draws daily charts. The zero value is usable.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Render draws the energy-flow chart: PV production and self-consumption
// as lines, battery charge and discharge as filled areas.
func (r *Renderer) Render(rows []telemetry.Row) ([]byte, error) {
	return r.render(rows, false)
}

// RenderWithSOC additionally overlays the state of charge scaled to
// percent, matching the /chart command of the bot.
func (r *Renderer) RenderWithSOC(rows []telemetry.Row) ([]byte, error) {
	return r.render(rows, true)
}

func (r *Renderer) render(rows []telemetry.Row, withSOC bool) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("chart: no rows to draw")
	}

	p := plot.New()
	p.Title.Text = "Battery performance " + rows[0].Day()
	p.X.Label.Text = "Time of day"
	p.Y.Label.Text = "kW"
	if withSOC {
		p.Y.Label.Text = "kW / %"
	}
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04"}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if err := addLine(p, rows, "PV production", orange, func(row telemetry.Row) float64 { return row.PVProfile }); err != nil {
		return nil, err
	}
	if err := addLine(p, rows, "PV self-consumed", green, func(row telemetry.Row) float64 { return row.PVUtilized }); err != nil {
		return nil, err
	}
	if err := addArea(p, rows, "Battery charging", fadedGreen, func(row telemetry.Row) float64 { return row.PVToBattery }); err != nil {
		return nil, err
	}
	if err := addArea(p, rows, "Battery discharging", fadedRed, func(row telemetry.Row) float64 { return row.BatteryToLoad }); err != nil {
		return nil, err
	}
	if withSOC {
		if err := addLine(p, rows, "SOC %", blue, func(row telemetry.Row) float64 { return row.SOC * 100 }); err != nil {
			return nil, err
		}
	}

	wt, err := p.WriterTo(12*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: write png: %w", err)
	}
	return buf.Bytes(), nil
}

func points(rows []telemetry.Row, value func(telemetry.Row) float64) plotter.XYs {
	xys := make(plotter.XYs, len(rows))
	for i, row := range rows {
		xys[i].X = float64(row.Timestamp.Unix())
		xys[i].Y = value(row)
	}
	return xys
}

func addLine(p *plot.Plot, rows []telemetry.Row, name string, c color.Color, value func(telemetry.Row) float64) error {
	line, err := plotter.NewLine(points(rows, value))
	if err != nil {
		return fmt.Errorf("chart: %s: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func addArea(p *plot.Plot, rows []telemetry.Row, name string, c color.Color, value func(telemetry.Row) float64) error {
	line, err := plotter.NewLine(points(rows, value))
	if err != nil {
		return fmt.Errorf("chart: %s: %w", name, err)
	}
	line.FillColor = c
	line.Color = color.Transparent
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
