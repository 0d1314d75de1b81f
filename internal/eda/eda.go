package eda

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"battery-buddy/internal/logger"
)

// Suite runs the fixed plot battery over one dataset. Every plot is an
// independent side-effect-only step; a failing plot is logged and the
// rest of the battery continues.
type Suite struct {
	frame  *Frame
	outDir string
}

func NewSuite(frame *Frame, outDir string) *Suite {
	return &Suite{frame: frame, outDir: outDir}
}

// Run executes all plots and returns the first directory-level error.
func (s *Suite) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"correlation_heatmap", s.CorrelationHeatmap},
		{"distributions", s.Distributions},
		{"scatter_pairs", s.ScatterPairs},
		{"timeseries_overview", s.TimeSeriesOverview},
		{"seasonality_heatmaps", s.SeasonalityHeatmaps},
		{"energy_flow", s.EnergyFlow},
		{"economics", s.Economics},
		{"heavy_load_rate", s.HeavyLoadRate},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			logger.Warn(ctx, "EDA plot failed", "plot", step.name, "error", err)
			continue
		}
		logger.Debug(ctx, "EDA plot done", "plot", step.name)
	}
	return nil
}

func (s *Suite) path(name string) string {
	return filepath.Join(s.outDir, name)
}

// corrGrid adapts a correlation matrix to the heatmap grid interface.
type corrGrid struct {
	names []string
	m     [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.names), len(g.names) }
func (g corrGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// CorrelationHeatmap draws the Pearson correlation matrix over all
// numeric columns.
func (s *Suite) CorrelationHeatmap() error {
	cols := s.frame.Columns()
	if len(cols) < 2 {
		return nil
	}

	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
		for j := range m[i] {
			m[i][j] = pairCorrelation(s.frame.Column(cols[i]), s.frame.Column(cols[j]))
		}
	}

	p := plot.New()
	p.Title.Text = "Feature Correlations (Pearson)"
	p.X.Tick.Marker = columnTicks{cols}
	p.Y.Tick.Marker = columnTicks{cols}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -1

	h := plotter.NewHeatMap(corrGrid{names: cols, m: m}, moreland.SmoothBlueRed().Palette(255))
	h.Min, h.Max = -1, 1
	p.Add(h)

	size := vg.Length(math.Min(4+0.35*float64(len(cols)), 14)) * vg.Inch
	return p.Save(size, size, s.path("correlation_heatmap.png"))
}

// pairCorrelation computes Pearson correlation over pairwise-complete
// observations.
func pairCorrelation(a, b []float64) float64 {
	var xs, ys []float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

type columnTicks struct {
	names []string
}

func (t columnTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, name := range t.names {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: name})
	}
	return ticks
}

// Distributions draws one histogram per numeric column.
func (s *Suite) Distributions() error {
	for _, col := range s.frame.Columns() {
		values := dropNaN(s.frame.Column(col))
		if len(values) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = "Distribution: " + col
		p.X.Label.Text = col
		p.Y.Label.Text = "Count"

		h, err := plotter.NewHist(plotter.Values(values), 40)
		if err != nil {
			return fmt.Errorf("%s: %w", col, err)
		}
		h.FillColor = plotutil.Color(0)
		p.Add(h)

		if err := p.Save(6*vg.Inch, 4*vg.Inch, s.path("dist_"+col+".png")); err != nil {
			return err
		}
	}
	return nil
}

// ScatterPairs draws pairwise scatter plots for the highest-variance
// columns, the poor man's pairplot.
func (s *Suite) ScatterPairs() error {
	cols := s.frame.TopVarianceColumns(4)
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			a, b := cols[i], cols[j]
			var xys plotter.XYs
			av, bv := s.frame.Column(a), s.frame.Column(b)
			for k := range av {
				if math.IsNaN(av[k]) || math.IsNaN(bv[k]) {
					continue
				}
				xys = append(xys, plotter.XY{X: av[k], Y: bv[k]})
			}
			if len(xys) == 0 {
				continue
			}

			p := plot.New()
			p.Title.Text = fmt.Sprintf("%s vs %s", a, b)
			p.X.Label.Text = a
			p.Y.Label.Text = b

			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return err
			}
			sc.GlyphStyle.Radius = vg.Points(1.5)
			sc.GlyphStyle.Color = plotutil.Color(1)
			p.Add(sc)

			if err := p.Save(5*vg.Inch, 5*vg.Inch, s.path(fmt.Sprintf("pair_%s_%s.png", a, b))); err != nil {
				return err
			}
		}
	}
	return nil
}

var trendColumns = []string{"net_load", "gross_load", "pv_profile", "f_opt", "SOC_opt"}

// TimeSeriesOverview draws the hourly trend columns and their daily means.
func (s *Suite) TimeSeriesOverview() error {
	if !s.frame.HasTimestamps() {
		return nil
	}
	present := presentColumns(s.frame, trendColumns)
	if len(present) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Time Series Overview (Hourly)"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	p.Legend.Top = true

	for i, col := range present {
		xys := timeXYs(s.frame.Timestamps, s.frame.Column(col))
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(col, line)
	}
	if err := p.Save(14*vg.Inch, 5*vg.Inch, s.path("timeseries_overview.png")); err != nil {
		return err
	}

	// Daily resample.
	pd := plot.New()
	pd.Title.Text = "Time Series (Daily Mean)"
	pd.X.Label.Text = "Date"
	pd.Y.Label.Text = "Mean Value"
	pd.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	pd.Legend.Top = true

	for i, col := range present {
		days, means := dailyMean(s.frame.Timestamps, s.frame.Column(col))
		xys := make(plotter.XYs, len(days))
		for k := range days {
			xys[k] = plotter.XY{X: float64(days[k].Unix()), Y: means[k]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		pd.Add(line)
		pd.Legend.Add(col, line)
	}
	return pd.Save(14*vg.Inch, 4*vg.Inch, s.path("timeseries_daily_mean.png"))
}

// seasonGrid holds hour-of-day by month mean values.
type seasonGrid struct {
	months []int
	cells  [24][13]float64 // [hour][month]; month index 1..12
}

func (g *seasonGrid) Dims() (c, r int)   { return len(g.months), 24 }
func (g *seasonGrid) Z(c, r int) float64 { return g.cells[r][g.months[c]] }
func (g *seasonGrid) X(c int) float64    { return float64(g.months[c]) }
func (g *seasonGrid) Y(r int) float64    { return float64(r) }

// SeasonalityHeatmaps draws hour-by-month mean heatmaps for the load and
// PV metrics.
func (s *Suite) SeasonalityHeatmaps() error {
	if !s.frame.HasTimestamps() {
		return nil
	}
	for _, col := range presentColumns(s.frame, []string{"net_load", "gross_load", "pv_profile"}) {
		sums := [24][13]float64{}
		counts := [24][13]int{}
		monthSeen := map[int]bool{}
		values := s.frame.Column(col)
		for i, ts := range s.frame.Timestamps {
			if ts.IsZero() || math.IsNaN(values[i]) {
				continue
			}
			h, m := ts.Hour(), int(ts.Month())
			sums[h][m] += values[i]
			counts[h][m]++
			monthSeen[m] = true
		}

		grid := &seasonGrid{}
		for m := 1; m <= 12; m++ {
			if monthSeen[m] {
				grid.months = append(grid.months, m)
			}
		}
		if len(grid.months) == 0 {
			continue
		}
		for h := 0; h < 24; h++ {
			for m := 1; m <= 12; m++ {
				if counts[h][m] > 0 {
					grid.cells[h][m] = sums[h][m] / float64(counts[h][m])
				}
			}
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s: Mean by Hour x Month", col)
		p.X.Label.Text = "Month"
		p.Y.Label.Text = "Hour"
		p.Add(plotter.NewHeatMap(grid, palette.Heat(64, 1)))

		if err := p.Save(10*vg.Inch, 5*vg.Inch, s.path("seasonality_"+col+".png")); err != nil {
			return err
		}
	}
	return nil
}

// EnergyFlow draws the stacked supply-to-load areas for the first week.
func (s *Suite) EnergyFlow() error {
	flowCols := presentColumns(s.frame, []string{"s_l_pv_opt", "s_l_grid_opt", "s_e_opt"})
	if len(flowCols) == 0 {
		return nil
	}
	limit := s.frame.Len()
	if s.frame.HasTimestamps() && limit > 24*7 {
		limit = 24 * 7 // first week for readability
	}

	p := plot.New()
	p.Title.Text = "Energy Supply to Load (First Week)"
	p.Y.Label.Text = "Power / Energy"
	p.Legend.Top = true

	// Stack the areas bottom-up.
	stacked := make([]float64, limit)
	for i, col := range flowCols {
		values := s.frame.Column(col)
		xys := make(plotter.XYs, limit)
		for k := 0; k < limit; k++ {
			v := values[k]
			if math.IsNaN(v) {
				v = 0
			}
			stacked[k] += v
			xys[k] = plotter.XY{X: float64(k), Y: stacked[k]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.FillColor = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(col, line)
	}
	return p.Save(14*vg.Inch, 5*vg.Inch, s.path("energy_flow_stacked_area.png"))
}

var econColumns = []string{"electricity_savings_step", "feed_in_revenue_delta_step"}

// Economics draws cumulative savings/revenue lines plus their per-step
// distributions.
func (s *Suite) Economics() error {
	present := presentColumns(s.frame, econColumns)
	if len(present) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Cumulative Savings and Feed-in Revenue"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Cumulative Value"
	p.Legend.Top = true

	for i, col := range present {
		values := s.frame.Column(col)
		xys := make(plotter.XYs, 0, len(values))
		var cum float64
		for k, v := range values {
			if !math.IsNaN(v) {
				cum += v
			}
			x := float64(k)
			if s.frame.HasTimestamps() && !s.frame.Timestamps[k].IsZero() {
				x = float64(s.frame.Timestamps[k].Unix())
			}
			xys = append(xys, plotter.XY{X: x, Y: cum})
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(col, line)
	}
	if s.frame.HasTimestamps() {
		p.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	}
	if err := p.Save(12*vg.Inch, 4*vg.Inch, s.path("economics_cumulative.png")); err != nil {
		return err
	}

	for _, col := range present {
		values := dropNaN(s.frame.Column(col))
		if len(values) == 0 {
			continue
		}
		ph := plot.New()
		ph.Title.Text = col + " per-step"
		ph.X.Label.Text = "value"
		ph.Y.Label.Text = "Count"
		h, err := plotter.NewHist(plotter.Values(values), 40)
		if err != nil {
			return err
		}
		h.FillColor = plotutil.Color(2)
		ph.Add(h)
		if err := ph.Save(6*vg.Inch, 4*vg.Inch, s.path("economics_dist_"+col+".png")); err != nil {
			return err
		}
	}
	return nil
}

// HeavyLoadRate draws the heavy-load occurrence rate by hour of day.
func (s *Suite) HeavyLoadRate() error {
	if !s.frame.Has("heavy_load") || !s.frame.HasTimestamps() {
		return nil
	}

	sums := [24]float64{}
	counts := [24]int{}
	values := s.frame.Column("heavy_load")
	for i, ts := range s.frame.Timestamps {
		if ts.IsZero() || math.IsNaN(values[i]) {
			continue
		}
		sums[ts.Hour()] += values[i]
		counts[ts.Hour()]++
	}

	rates := make(plotter.Values, 24)
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			rates[h] = sums[h] / float64(counts[h]) * 100
		}
		labels[h] = fmt.Sprintf("%d", h)
	}

	p := plot.New()
	p.Title.Text = "Heavy Load Rate by Hour (%)"
	p.X.Label.Text = "Hour of Day"
	p.Y.Label.Text = "Percentage (%)"

	bars, err := plotter.NewBarChart(rates, vg.Points(12))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(3)
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 4*vg.Inch, s.path("heavy_load_rate_by_hour.png"))
}

func presentColumns(f *Frame, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func timeXYs(ts []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(ts))
	for i := range ts {
		if ts[i].IsZero() || math.IsNaN(values[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(ts[i].Unix()), Y: values[i]})
	}
	return xys
}

func dailyMean(ts []time.Time, values []float64) ([]time.Time, []float64) {
	type acc struct {
		sum float64
		n   int
	}
	byDay := map[string]*acc{}
	var order []string
	dayTime := map[string]time.Time{}
	for i := range ts {
		if ts[i].IsZero() || math.IsNaN(values[i]) {
			continue
		}
		day := ts[i].Format("2006-01-02")
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
			order = append(order, day)
			dayTime[day] = time.Date(ts[i].Year(), ts[i].Month(), ts[i].Day(), 0, 0, 0, 0, ts[i].Location())
		}
		a.sum += values[i]
		a.n++
	}
	days := make([]time.Time, 0, len(order))
	means := make([]float64, 0, len(order))
	for _, day := range order {
		days = append(days, dayTime[day])
		means = append(means, byDay[day].sum/float64(byDay[day].n))
	}
	return days, means
}
