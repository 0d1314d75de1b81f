package bot

import (
	"strings"
	"testing"
	"time"

	"battery-buddy/internal/store"
	"battery-buddy/internal/telemetry"
)

func statusRows() []telemetry.Row {
	parse := func(s string) telemetry.Time {
		var t telemetry.Time
		if err := t.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
			panic(err)
		}
		return t
	}
	return []telemetry.Row{
		{
			Timestamp:              parse("2025-06-01 10:00:00"),
			PVProfile:              3,
			PVToBattery:            1,
			BatteryToLoad:          0.5,
			GrossLoad:              2,
			GridImport:             1,
			ForeignPowerCosts:      0.35,
			ElectricitySavingsStep: 0.10,
			SOC:                    0.40,
		},
		{
			Timestamp:              parse("2025-06-01 11:00:00"),
			PVProfile:              4,
			GridToBattery:          0.5,
			BatteryToGrid:          0.2,
			GrossLoad:              2,
			GridImport:             0,
			ForeignPowerCosts:      0.20,
			ElectricitySavingsStep: 0.15,
			SOC:                    0.90,
		},
	}
}

func TestStatusText(t *testing.T) {
	text := statusText(statusRows())

	if !strings.Contains(text, "*Charge level:* 90.0% 🔋 Fully charged") {
		t.Errorf("Missing charge level line: %q", text)
	}
	if !strings.Contains(text, "*Savings today:* 0.25€") {
		t.Errorf("Missing summed savings: %q", text)
	}
	if !strings.Contains(text, "*Current electricity price:* 0.200€/kWh") {
		t.Errorf("Missing last price: %q", text)
	}
	if !strings.Contains(text, "*Peak price today:* 0.350€/kWh at 10:00") {
		t.Errorf("Missing peak price with time: %q", text)
	}
	if !strings.Contains(text, "The battery is 🔋 charged") {
		t.Errorf("Missing battery state line: %q", text)
	}
}

func TestStatusTextChargeBands(t *testing.T) {
	cases := []struct {
		soc  float64
		want string
	}{
		{0.95, "Fully charged"},
		{0.60, "Well charged"},
		{0.30, "Partially charged"},
		{0.10, "Almost empty"},
	}
	for _, tc := range cases {
		rows := statusRows()
		rows[len(rows)-1].SOC = tc.soc
		if text := statusText(rows); !strings.Contains(text, tc.want) {
			t.Errorf("SOC %.2f: expected %q in status, got %q", tc.soc, tc.want, text)
		}
	}
}

func TestBuildChatContext(t *testing.T) {
	cc := buildChatContext(statusRows())

	if cc.CurrentSOC != 0.90 {
		t.Errorf("Expected current SOC 0.90, got %v", cc.CurrentSOC)
	}
	if cc.TotalSavings != 0.25 {
		t.Errorf("Expected total savings 0.25, got %v", cc.TotalSavings)
	}
	if cc.SolarProduction != 7 {
		t.Errorf("Expected solar production 7, got %v", cc.SolarProduction)
	}
	if cc.BatteryCharged != 1.5 {
		t.Errorf("Expected battery charged 1.5, got %v", cc.BatteryCharged)
	}
	if cc.BatteryDischarged != 0.7 {
		t.Errorf("Expected battery discharged 0.7, got %v", cc.BatteryDischarged)
	}
	if cc.PeakPrice != 0.35 || cc.PeakTime != "10:00" {
		t.Errorf("Expected peak 0.35 at 10:00, got %v at %s", cc.PeakPrice, cc.PeakTime)
	}
	if cc.GridDependencePct != 25 {
		t.Errorf("Expected grid dependence 25%%, got %v", cc.GridDependencePct)
	}
}

func TestBuildChatContextZeroGrossLoad(t *testing.T) {
	rows := statusRows()
	for i := range rows {
		rows[i].GrossLoad = 0
	}
	if cc := buildChatContext(rows); cc.GridDependencePct != 0 {
		t.Errorf("Expected grid dependence 0 with no load, got %v", cc.GridDependencePct)
	}
}

func mustClock(t *testing.T, s string) time.Time {
	t.Helper()
	now, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return now
}

func TestShouldPushNow(t *testing.T) {
	cfg := &store.Config{}
	cfg.Telegram.Push.Enabled = true
	cfg.Telegram.Push.ChatID = 42
	cfg.Telegram.Push.After = "20:00"
	b := &Bot{cfg: cfg}

	if b.shouldPushNow(mustClock(t, "2025-06-01 19:59")) {
		t.Error("Must not push before the configured time")
	}
	if !b.shouldPushNow(mustClock(t, "2025-06-01 20:00")) {
		t.Error("Expected push at the configured time")
	}
	if b.shouldPushNow(mustClock(t, "2025-06-01 21:00")) {
		t.Error("Must not push twice on the same day")
	}
	if !b.shouldPushNow(mustClock(t, "2025-06-02 20:30")) {
		t.Error("Expected push again the next day")
	}
}

func TestShouldPushNowDisabled(t *testing.T) {
	cfg := &store.Config{}
	cfg.Telegram.Push.After = "20:00"
	b := &Bot{cfg: cfg}
	if b.shouldPushNow(mustClock(t, "2025-06-01 20:30")) {
		t.Error("Must not push when push is disabled")
	}
}
