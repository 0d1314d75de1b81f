package interfaces

import "context"

// Forecaster looks up tomorrow's expected sunshine duration in hours.
type Forecaster interface {
	SunHoursTomorrow(ctx context.Context) (float64, error)
}
