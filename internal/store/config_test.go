package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, "data_path: data/day1.json\n")

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Narrator.Provider != "NOOP" {
		t.Errorf("Expected default provider NOOP, got %s", cfg.Narrator.Provider)
	}
	if cfg.Narrator.MaxTokens != 300 {
		t.Errorf("Expected default max_tokens 300, got %d", cfg.Narrator.MaxTokens)
	}
	if cfg.Weather.FallbackSunHours != 5.0 {
		t.Errorf("Expected default fallback sun hours 5.0, got %v", cfg.Weather.FallbackSunHours)
	}
	if cfg.Weather.Timezone != "Europe/Berlin" {
		t.Errorf("Expected default timezone, got %s", cfg.Weather.Timezone)
	}
	if cfg.Delivery.DiscordWebhookEnv != "DISCORD_WEBHOOK_URL" {
		t.Errorf("Expected default webhook env name, got %s", cfg.Delivery.DiscordWebhookEnv)
	}
	if cfg.Telegram.TokenEnv != "TELEGRAM_BOT_TOKEN" {
		t.Errorf("Expected default token env name, got %s", cfg.Telegram.TokenEnv)
	}
	if cfg.Telegram.Push.After != "20:00" {
		t.Errorf("Expected default push time, got %s", cfg.Telegram.Push.After)
	}
	if cfg.ReportLog.Dir != "logs" {
		t.Errorf("Expected default log dir, got %s", cfg.ReportLog.Dir)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	p := writeConfig(t, `
data_path: data/day1.json
narrator:
  provider: CLAUDE
  model: claude-3-5-haiku-20241022
  max_tokens: 500
weather:
  enabled: true
  latitude: 48.1374
  longitude: 11.5755
telegram:
  push:
    enabled: true
    chat_id: 12345
    after: "21:30"
`)

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Narrator.Provider != "CLAUDE" || cfg.Narrator.MaxTokens != 500 {
		t.Errorf("Narrator section lost: %+v", cfg.Narrator)
	}
	if !cfg.Weather.Enabled || cfg.Weather.Latitude != 48.1374 {
		t.Errorf("Weather section lost: %+v", cfg.Weather)
	}
	if cfg.Telegram.Push.ChatID != 12345 || cfg.Telegram.Push.After != "21:30" {
		t.Errorf("Push section lost: %+v", cfg.Telegram.Push)
	}
}

func TestValidateRejectsBadProvider(t *testing.T) {
	p := writeConfig(t, `
data_path: data/day1.json
narrator:
  provider: GEMINI
`)
	if _, err := LoadConfig(p); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestValidateRejectsEmptyDataPath(t *testing.T) {
	p := writeConfig(t, "narrator:\n  provider: NOOP\n")
	if _, err := LoadConfig(p); err == nil {
		t.Error("Expected error for missing data_path")
	}
}

func TestValidateRejectsBadCoordinates(t *testing.T) {
	p := writeConfig(t, `
data_path: data/day1.json
weather:
  enabled: true
  latitude: 123.0
  longitude: 11.5
`)
	if _, err := LoadConfig(p); err == nil {
		t.Error("Expected error for out-of-range latitude")
	}
}

func TestValidateRejectsPushWithoutChatID(t *testing.T) {
	p := writeConfig(t, `
data_path: data/day1.json
telegram:
  push:
    enabled: true
`)
	if _, err := LoadConfig(p); err == nil {
		t.Error("Expected error for push without chat_id")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
