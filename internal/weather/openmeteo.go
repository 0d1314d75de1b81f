package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"battery-buddy/internal/api"
	"battery-buddy/internal/store"
	"battery-buddy/internal/trace"
)

const defaultBaseURL = "https://api.open-meteo.com"

// OpenMeteo implements interfaces.Forecaster against the Open-Meteo
// forecast API. The API needs no key.
type OpenMeteo struct {
	cfg    *store.Config
	client *api.Client
}

// Option configures the forecaster.
type Option func(*OpenMeteo)

// WithBaseURL overrides the API host, used in tests.
func WithBaseURL(base string) Option {
	return func(o *OpenMeteo) {
		o.client = api.NewClient(
			api.WithBaseURL(base),
			api.WithTimeout(10*time.Second),
		)
	}
}

func New(cfg *store.Config, opts ...Option) *OpenMeteo {
	o := &OpenMeteo{
		cfg: cfg,
		client: api.NewClient(
			api.WithBaseURL(defaultBaseURL),
			api.WithTimeout(10*time.Second),
			api.WithLogging(true),
		),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SunHoursTomorrow returns tomorrow's forecast sunshine duration in hours.
func (o *OpenMeteo) SunHoursTomorrow(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "weather.SunHoursTomorrow")
	defer span.End()

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", o.cfg.Weather.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", o.cfg.Weather.Longitude))
	q.Set("daily", "sunshine_duration,daylight_duration")
	q.Set("timezone", o.cfg.Weather.Timezone)
	q.Set("forecast_days", "3")

	resp, err := o.client.GET(ctx, "/v1/forecast?"+q.Encode())
	if err != nil {
		return 0, fmt.Errorf("weather lookup: %w", err)
	}

	var body struct {
		Daily struct {
			SunshineDuration []float64 `json:"sunshine_duration"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("weather lookup: decode: %w", err)
	}
	// Index 0 is today, 1 is tomorrow. Values come back in seconds.
	if len(body.Daily.SunshineDuration) < 2 {
		return 0, fmt.Errorf("weather lookup: forecast too short (%d days)", len(body.Daily.SunshineDuration))
	}
	return body.Daily.SunshineDuration[1] / 60 / 60, nil
}
