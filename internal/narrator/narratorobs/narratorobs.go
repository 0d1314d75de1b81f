package narratorobs

import (
	"context"

	"battery-buddy/internal/interfaces"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/summary"
	"battery-buddy/internal/trace"
	"battery-buddy/internal/types"
)

// observableNarrator wraps a Narrator with logging and tracing.
type observableNarrator struct {
	narrator interfaces.Narrator
}

// Compile-time interface check
var _ interfaces.Narrator = (*observableNarrator)(nil)

// Wrap wraps a narrator with observability middleware.
func Wrap(n interfaces.Narrator) interfaces.Narrator {
	return &observableNarrator{narrator: n}
}

func (on *observableNarrator) Generate(ctx context.Context, s summary.Summary, styleInstructions string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "narrator.Generate")
	defer span.End()

	logger.Debug(ctx, "Requesting daily narration",
		"date", s.Date,
		"total_solar", s.TotalSolar,
		"savings", s.Savings,
	)

	text, err := on.narrator.Generate(ctx, s, styleInstructions)
	if err != nil {
		logger.ErrorWithErr(ctx, "Narration failed", err, "date", s.Date)
		return "", err
	}

	logger.Info(ctx, "Narration received", "date", s.Date, "chars", len(text))
	return text, nil
}

func (on *observableNarrator) Reply(ctx context.Context, history []types.Message) (string, error) {
	ctx, span := trace.StartSpan(ctx, "narrator.Reply")
	defer span.End()

	logger.Debug(ctx, "Requesting chat reply", "turns", len(history))

	text, err := on.narrator.Reply(ctx, history)
	if err != nil {
		logger.ErrorWithErr(ctx, "Chat reply failed", err, "turns", len(history))
		return "", err
	}

	logger.Info(ctx, "Chat reply received", "turns", len(history), "chars", len(text))
	return text, nil
}
