package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"battery-buddy/internal/store"
	"battery-buddy/internal/summary"
	"battery-buddy/internal/telemetry"
	"battery-buddy/internal/types"
)

type fakeNarrator struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeNarrator) Generate(_ context.Context, s summary.Summary, _ string) (string, error) {
	f.calls.Add(1)
	if f.fail {
		return "", errors.New("service unavailable")
	}
	return "narrated report for " + s.Date, nil
}

func (f *fakeNarrator) Reply(_ context.Context, _ []types.Message) (string, error) {
	return "ok", nil
}

type fakeRenderer struct {
	fail bool
}

func (f *fakeRenderer) Render(rows []telemetry.Row) ([]byte, error) {
	if f.fail {
		return nil, errors.New("render broke")
	}
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func (f *fakeRenderer) RenderWithSOC(rows []telemetry.Row) ([]byte, error) {
	return f.Render(rows)
}

type fakeForecaster struct {
	hours float64
	err   error
}

func (f *fakeForecaster) SunHoursTomorrow(context.Context) (float64, error) {
	return f.hours, f.err
}

func writeDayFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "day.json")

	var rows []string
	for h := 0; h < 4; h++ {
		rows = append(rows, fmt.Sprintf(`{
			"timestamp":"2025-06-01T%02d:00:00",
			"pv_profile":%d,"pv_utilized_kw_opt":1,"pv_to_grid_kw_opt":0.5,
			"pv_to_battery_kw_opt":0.2,"grid_to_battery_kw_opt":0,
			"battery_to_load_kw_opt":0.1,"battery_to_grid_kw_opt":0,
			"grid_import_kw_opt":0.4,"grid_export_kw_opt":0.5,
			"gross_load":1.4,"net_load":0.9,"foreign_power_costs":0.2,
			"electricity_savings_step":0.05,"feed_in_revenue_delta_step":0.01,
			"SOC_opt":0.5}`, h, h+1))
	}
	data := "[" + strings.Join(rows, ",") + "]"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write day file: %v", err)
	}
	return path
}

func testConfig(t *testing.T) *store.Config {
	t.Helper()
	cfg := &store.Config{}
	cfg.DataPath = writeDayFile(t)
	cfg.Narrator.Provider = "NOOP"
	cfg.Narrator.MaxTokens = 100
	return cfg
}

func TestDailyUsesNarration(t *testing.T) {
	cfg := testConfig(t)
	n := &fakeNarrator{}
	svc := NewService(cfg, n, &fakeRenderer{}, nil, nil)

	r, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if !r.Narrated {
		t.Error("Expected report to be narrated")
	}
	if r.Text != "narrated report for 2025-06-01" {
		t.Errorf("Unexpected report text: %q", r.Text)
	}
	if r.Date != "2025-06-01" {
		t.Errorf("Expected date 2025-06-01, got %s", r.Date)
	}
	if len(r.ChartPNG) == 0 {
		t.Error("Expected chart bytes")
	}
}

func TestDailyFallsBackWhenNarratorFails(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg, &fakeNarrator{fail: true}, &fakeRenderer{}, nil, nil)

	r, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if r.Narrated {
		t.Error("Expected fallback report, not narration")
	}
	if !strings.Contains(r.Text, "Battery report for 2025-06-01") {
		t.Errorf("Fallback text missing header: %q", r.Text)
	}
	if !strings.Contains(r.Text, "Savings:") {
		t.Errorf("Fallback text missing savings: %q", r.Text)
	}
}

func TestDailyContinuesWithoutChart(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg, &fakeNarrator{}, &fakeRenderer{fail: true}, nil, nil)

	r, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if r.ChartPNG != nil {
		t.Error("Expected no chart bytes after render failure")
	}
	if r.Text == "" {
		t.Error("Expected report text despite render failure")
	}
}

func TestDailyComputesOncePerDay(t *testing.T) {
	cfg := testConfig(t)
	n := &fakeNarrator{}
	svc := NewService(cfg, n, &fakeRenderer{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Daily(context.Background()); err != nil {
				t.Errorf("Daily failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := n.calls.Load(); got != 1 {
		t.Errorf("Expected exactly one narration for concurrent callers, got %d", got)
	}

	// A later call hits the cache too.
	if _, err := svc.Daily(context.Background()); err != nil {
		t.Fatalf("Cached Daily failed: %v", err)
	}
	if got := n.calls.Load(); got != 1 {
		t.Errorf("Expected cached report, narrator called %d times", got)
	}
}

func TestDailyWeatherFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Weather.Enabled = true
	cfg.Weather.FallbackSunHours = 5.0
	svc := NewService(cfg, &fakeNarrator{fail: true}, &fakeRenderer{}, &fakeForecaster{err: errors.New("timeout")}, nil)

	r, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if !strings.Contains(r.Text, "5.0 sun hours") {
		t.Errorf("Expected fallback sun hours in text: %q", r.Text)
	}
}

func TestDailyWeatherForecast(t *testing.T) {
	cfg := testConfig(t)
	cfg.Weather.Enabled = true
	svc := NewService(cfg, &fakeNarrator{fail: true}, &fakeRenderer{}, &fakeForecaster{hours: 8.2}, nil)

	r, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if !strings.Contains(r.Text, "8.2 sun hours") {
		t.Errorf("Expected forecast sun hours in text: %q", r.Text)
	}
}

func TestFallbackWithoutWeather(t *testing.T) {
	s := summary.Summary{
		Date:              "2025-06-01",
		TotalSolar:        12.3,
		Savings:           1.42,
		BatteryCharged:    4.0,
		BatteryDischarged: 3.1,
		PeakPrice:         0.31,
		PeakPriceTime:     "18:00",
	}

	text := Fallback(s)
	if !strings.Contains(text, "12.3 kWh") {
		t.Errorf("Fallback missing solar production: %q", text)
	}
	if !strings.Contains(text, "0.31€/kWh at 18:00") {
		t.Errorf("Fallback missing peak price: %q", text)
	}
	if strings.Contains(text, "Expected tomorrow") {
		t.Errorf("Fallback must omit forecast line without weather data: %q", text)
	}
}
