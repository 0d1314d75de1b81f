package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"battery-buddy/internal/chart"
	"battery-buddy/internal/interfaces"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/narrator/claude"
	"battery-buddy/internal/narrator/narratorobs"
	"battery-buddy/internal/narrator/noop"
	"battery-buddy/internal/narrator/openai"
	"battery-buddy/internal/report"
	"battery-buddy/internal/reportlog"
	"battery-buddy/internal/store"
	"battery-buddy/internal/trace"
	"battery-buddy/internal/weather"
)

// initializeSystem loads the environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeNarrator builds the configured provider wrapped with
// observability middleware.
func initializeNarrator(ctx context.Context, cfg *store.Config) interfaces.Narrator {
	var n interfaces.Narrator
	switch cfg.Narrator.Provider {
	case "CLAUDE":
		logger.Info(ctx, "Using Claude narrator", "model", cfg.Narrator.Model)
		n = claude.New(cfg)
	case "OPENAI":
		logger.Info(ctx, "Using OpenAI narrator", "model", cfg.Narrator.Model)
		n = openai.New(cfg)
	default:
		logger.Warn(ctx, "No narrator provider configured - replies will be deterministic")
		n = noop.New()
	}
	return narratorobs.Wrap(n)
}

// initializeReports wires the shared report service: narrator, chart
// renderer, weather forecaster and the report log.
func initializeReports(ctx context.Context, cfg *store.Config, n interfaces.Narrator) *report.Service {
	var forecaster interfaces.Forecaster
	if cfg.Weather.Enabled {
		forecaster = weather.New(cfg)
	} else {
		logger.Info(ctx, "Weather lookups disabled")
	}

	rl := reportlog.New(cfg.ReportLog.Dir)
	if cfg.ReportLog.RetentionDays > 0 {
		if err := rl.CompressOlder(cfg.ReportLog.RetentionDays); err != nil {
			logger.Warn(ctx, "Failed to compress old report logs", "error", err)
		}
	}

	return report.NewService(cfg, n, chart.New(), forecaster, rl)
}
