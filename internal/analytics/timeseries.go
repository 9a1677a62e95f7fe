package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/robopoint/salesops-manager/internal/entity"
)

const dayKey = "2006-01-02"

// maxSeriesDays caps how many day buckets one request may produce.
const maxSeriesDays = 400

// GetTimeSeries produces one bucket per calendar day of the window, inclusive
// of both edge days, each carrying the requested per-day counts. The per-metric
// reads fan out concurrently; buckets are assembled by date afterwards, so the
// completion order of the underlying fetches never shows in the output. A
// failed metric read drops only that metric's counters from the buckets.
func (s *Service) GetTimeSeries(ctx context.Context, window entity.TimeRange, metrics []string) ([]entity.TimeBucket, error) {
	if window.From.After(window.To) {
		return nil, entity.ErrInvalidRange
	}
	if window.Days() > maxSeriesDays {
		return nil, fmt.Errorf("window of %d days exceeds the %d day series limit", window.Days(), maxSeriesDays)
	}

	// Validate the whole request before the first read goes out, so a bad
	// metric name never leaves already-launched fetches running detached.
	specs := make(map[string]metricSpec, len(metrics))
	for _, name := range metrics {
		spec, ok := kpiSpecs[name]
		if !ok {
			return nil, fmt.Errorf("unknown time series metric %q", name)
		}
		if spec.kind != kindCount {
			return nil, fmt.Errorf("metric %q is not countable per day", name)
		}
		specs[name] = spec
	}

	var mu sync.Mutex
	byMetric := make(map[string]map[string]int, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for name, spec := range specs {
		name, spec := name, spec
		g.Go(func() error {
			counts, err := s.repo.Metrics().CountByDay(gctx, spec.entity, spec.dateField, window.From, window.To, spec.pred)
			if err != nil {
				slog.Default().ErrorContext(gctx, "time series read failed",
					slog.String("metric", name),
					slog.String("err", err.Error()),
				)
				return nil
			}
			mu.Lock()
			byMetric[name] = counts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// To is exclusive; step back a nanosecond to find the last covered day.
	loc := window.From.Location()
	first := time.Date(window.From.Year(), window.From.Month(), window.From.Day(), 0, 0, 0, 0, loc)
	lastT := window.To.Add(-time.Nanosecond)
	last := time.Date(lastT.Year(), lastT.Month(), lastT.Day(), 0, 0, 0, 0, loc)

	var buckets []entity.TimeBucket
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayKey)
		counts := make(map[string]int, len(byMetric))
		for name, m := range byMetric {
			counts[name] = m[key]
		}
		buckets = append(buckets, entity.TimeBucket{Date: d, Counts: counts})
	}
	return buckets, nil
}
