package interfaces

import (
	"context"

	"battery-buddy/internal/summary"
	"battery-buddy/internal/types"
)

// Narrator turns a daily summary into prose, and answers free-form
// follow-up questions. Implementations call an external text-generation
// service; callers must treat any error as transient and fall back to a
// deterministic template.
type Narrator interface {
	Generate(ctx context.Context, s summary.Summary, styleInstructions string) (string, error)
	Reply(ctx context.Context, history []types.Message) (string, error)
}
