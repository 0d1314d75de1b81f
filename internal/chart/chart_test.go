package chart

import (
	"bytes"
	"testing"
	"time"

	"battery-buddy/internal/telemetry"
)

func chartRows() []telemetry.Row {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]telemetry.Row, 24)
	for h := range rows {
		rows[h] = telemetry.Row{
			Timestamp:     telemetry.Time{Time: base.Add(time.Duration(h) * time.Hour)},
			PVProfile:     float64(h % 12),
			PVUtilized:    float64(h%12) * 0.6,
			PVToBattery:   0.3,
			BatteryToLoad: 0.2,
			SOC:           0.5,
		}
	}
	return rows
}

var pngMagic = []byte{0x89, 0x50, 0x4e, 0x47}

func TestRenderProducesPNG(t *testing.T) {
	png, err := New().Render(chartRows())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("Output is not a PNG, starts with %v", png[:min(4, len(png))])
	}
}

func TestRenderWithSOCProducesPNG(t *testing.T) {
	png, err := New().RenderWithSOC(chartRows())
	if err != nil {
		t.Fatalf("RenderWithSOC failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("Output is not a PNG")
	}
}

func TestRenderEmptyRowsFails(t *testing.T) {
	if _, err := New().Render(nil); err == nil {
		t.Error("Expected error for empty input")
	}
}
