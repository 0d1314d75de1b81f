package noop

import (
	"context"
	"fmt"

	"battery-buddy/internal/logger"
	"battery-buddy/internal/summary"
	"battery-buddy/internal/types"
)

// Narrator is the fallback provider used when no text-generation service
// is configured. It never fails.
type Narrator struct{}

// New returns a narrator that produces a fixed, deterministic line.
func New() *Narrator {
	return &Narrator{}
}

// Generate returns a minimal deterministic one-liner from the summary.
func (n *Narrator) Generate(ctx context.Context, s summary.Summary, _ string) (string, error) {
	logger.Debug(ctx, "Noop narrator called", "date", s.Date)
	return fmt.Sprintf("Battery report for %s: %.1f kWh solar, %.2f saved.", s.Date, s.TotalSolar, s.Savings), nil
}

// Reply always points the user at the command surface.
func (n *Narrator) Reply(ctx context.Context, _ []types.Message) (string, error) {
	logger.Debug(ctx, "Noop narrator reply called")
	return "No text-generation service is configured. Try /daily, /status or /chart.", nil
}
