package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"battery-buddy/internal/bot"
	"battery-buddy/internal/chart"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			logger.Warn(context.Background(), "Tracer shutdown failed", "error", err)
		}
	}()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}

	token := os.Getenv(cfg.Telegram.TokenEnv)
	if token == "" {
		logger.Error(ctx, "Bot token missing", "env", cfg.Telegram.TokenEnv)
		os.Exit(1)
	}

	narrator := initializeNarrator(ctx, cfg)
	reports := initializeReports(ctx, cfg, narrator)

	b, err := bot.New(token, cfg, reports, narrator, chart.New())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to connect to Telegram", err)
		os.Exit(1)
	}

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr(ctx, "Bot stopped with error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "Shutting down")
}
