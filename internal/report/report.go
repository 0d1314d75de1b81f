// Package report assembles the daily report: telemetry load, summary
// computation, weather forecast, narration and chart rendering. It is the
// only place this pipeline exists; both the bot and the one-shot reporter
// call into it.
package report

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"battery-buddy/internal/interfaces"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/reportlog"
	"battery-buddy/internal/store"
	"battery-buddy/internal/summary"
	"battery-buddy/internal/telemetry"
	"battery-buddy/internal/trace"
	"battery-buddy/internal/types"
)

// Service implements interfaces.Reporter.
type Service struct {
	cfg        *store.Config
	narrator   interfaces.Narrator
	renderer   interfaces.ChartRenderer
	forecaster interfaces.Forecaster // nil when weather lookups are disabled
	log        *reportlog.Log       // nil when report logging is disabled

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]types.Report
}

var _ interfaces.Reporter = (*Service)(nil)

func NewService(cfg *store.Config, n interfaces.Narrator, r interfaces.ChartRenderer, f interfaces.Forecaster, rl *reportlog.Log) *Service {
	return &Service{
		cfg:        cfg,
		narrator:   n,
		renderer:   r,
		forecaster: f,
		log:        rl,
		cache:      make(map[string]types.Report),
	}
}

// Daily returns today's report. Concurrent callers for the same calendar
// day share a single in-flight computation, and completed reports are
// cached so repeated commands do not recompute or renarrate.
func (s *Service) Daily(ctx context.Context) (types.Report, error) {
	key := time.Now().Format("2006-01-02")

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		r, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return r, nil
		}

		r, err := s.build(ctx)
		if err != nil {
			return types.Report{}, err
		}

		s.mu.Lock()
		s.cache[key] = r
		s.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return types.Report{}, err
	}
	return v.(types.Report), nil
}

// build runs the full pipeline once. Computation errors are fatal to the
// invocation; narrator, weather and chart failures degrade the report
// instead of failing it.
func (s *Service) build(ctx context.Context) (types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "report.build")
	defer span.End()

	rows, err := telemetry.Load(s.cfg.DataPath)
	if err != nil {
		return types.Report{}, err
	}

	sum, err := summary.Compute(rows)
	if err != nil {
		return types.Report{}, err
	}

	if s.cfg.Weather.Enabled {
		hours := s.cfg.Weather.FallbackSunHours
		if s.forecaster != nil {
			if h, err := s.forecaster.SunHoursTomorrow(ctx); err != nil {
				logger.Warn(ctx, "Weather lookup failed, using fallback",
					"error", err, "fallback_hours", hours)
			} else {
				hours = h
			}
		}
		sum.SunHoursTomorrow = &hours
	}

	narrated := true
	text, err := s.narrator.Generate(ctx, sum, s.cfg.Narrator.Style)
	if err != nil {
		logger.Warn(ctx, "Narrator unavailable, using fallback template", "error", err)
		text = Fallback(sum)
		narrated = false
	}

	var png []byte
	if s.renderer != nil {
		if png, err = s.renderer.Render(rows); err != nil {
			logger.ErrorWithErr(ctx, "Chart rendering failed, report continues without image", err)
			png = nil
		}
	}

	r := types.Report{
		Date:     sum.Date,
		Text:     text,
		ChartPNG: png,
		Narrated: narrated,
		Savings:  sum.Savings,
	}

	if s.log != nil {
		if err := s.log.Append(reportlog.Entry{
			Date:     r.Date,
			Narrated: r.Narrated,
			Savings:  r.Savings,
			Text:     r.Text,
		}); err != nil {
			logger.Warn(ctx, "Failed to append report log entry", "error", err)
		}
	}

	logger.ReportGenerated(ctx, r.Date, r.Savings, r.Narrated, "chart", png != nil)
	return r, nil
}

// Rows exposes the loaded day of telemetry for callers that chart or
// inspect raw rows (the /chart and /status commands).
func (s *Service) Rows() ([]telemetry.Row, error) {
	return telemetry.Load(s.cfg.DataPath)
}

// Summary computes the daily summary for the configured dataset without
// narration or rendering.
func (s *Service) Summary() (summary.Summary, error) {
	rows, err := telemetry.Load(s.cfg.DataPath)
	if err != nil {
		return summary.Summary{}, err
	}
	return summary.Compute(rows)
}
