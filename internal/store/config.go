package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataPath string `yaml:"data_path"`

	Narrator struct {
		Provider    string  `yaml:"provider"` // CLAUDE, OPENAI or NOOP
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		Style       string  `yaml:"style"`
		ChatStyle   string  `yaml:"chat_style"`
	} `yaml:"narrator"`

	Weather struct {
		Enabled          bool    `yaml:"enabled"`
		Latitude         float64 `yaml:"latitude"`
		Longitude        float64 `yaml:"longitude"`
		Timezone         string  `yaml:"timezone"`
		FallbackSunHours float64 `yaml:"fallback_sun_hours"`
	} `yaml:"weather"`

	Delivery struct {
		DiscordWebhookEnv string `yaml:"discord_webhook_env"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
	} `yaml:"delivery"`

	Telegram struct {
		TokenEnv string `yaml:"token_env"`
		Push     struct {
			Enabled bool   `yaml:"enabled"`
			ChatID  int64  `yaml:"chat_id"`
			After   string `yaml:"after"` // local time HH:MM
		} `yaml:"push"`
	} `yaml:"telegram"`

	ReportLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"report_log"`
}

func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("data_path cannot be empty")
	}
	switch c.Narrator.Provider {
	case "CLAUDE", "OPENAI", "NOOP":
	default:
		return fmt.Errorf("invalid narrator.provider '%s': must be 'CLAUDE', 'OPENAI' or 'NOOP'", c.Narrator.Provider)
	}
	if c.Narrator.MaxTokens <= 0 {
		return fmt.Errorf("narrator.max_tokens must be positive, got %d", c.Narrator.MaxTokens)
	}
	if c.Weather.Enabled {
		if c.Weather.Latitude < -90 || c.Weather.Latitude > 90 {
			return fmt.Errorf("weather.latitude out of range: %.4f", c.Weather.Latitude)
		}
		if c.Weather.Longitude < -180 || c.Weather.Longitude > 180 {
			return fmt.Errorf("weather.longitude out of range: %.4f", c.Weather.Longitude)
		}
	}
	if c.Telegram.Push.Enabled && c.Telegram.Push.ChatID == 0 {
		return errors.New("telegram.push.chat_id required when push is enabled")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Narrator.Provider == "" {
		c.Narrator.Provider = "NOOP"
	}
	if c.Narrator.Model == "" {
		c.Narrator.Model = "claude-3-5-haiku-20241022"
	}
	if c.Narrator.MaxTokens == 0 {
		c.Narrator.MaxTokens = 300
	}
	if c.Weather.FallbackSunHours == 0 {
		c.Weather.FallbackSunHours = 5.0
	}
	if c.Weather.Timezone == "" {
		c.Weather.Timezone = "Europe/Berlin"
	}
	if c.Delivery.DiscordWebhookEnv == "" {
		c.Delivery.DiscordWebhookEnv = "DISCORD_WEBHOOK_URL"
	}
	if c.Delivery.TimeoutSeconds == 0 {
		c.Delivery.TimeoutSeconds = 30
	}
	if c.Telegram.TokenEnv == "" {
		c.Telegram.TokenEnv = "TELEGRAM_BOT_TOKEN"
	}
	if c.Telegram.Push.After == "" {
		c.Telegram.Push.After = "20:00"
	}
	if c.ReportLog.Dir == "" {
		c.ReportLog.Dir = "logs"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
