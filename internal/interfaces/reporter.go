package interfaces

import (
	"context"

	"battery-buddy/internal/types"
)

// Reporter assembles the daily report (summary, narration, chart) for the
// current dataset. Implementations cache per calendar day and collapse
// concurrent requests into a single computation.
type Reporter interface {
	Daily(ctx context.Context) (types.Report, error)
}
