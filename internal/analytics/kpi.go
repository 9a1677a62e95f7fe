package analytics

import (
	"context"
	"sync"

	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

type aggKind int

const (
	kindCount aggKind = iota + 1
	kindSum
)

// metricSpec binds a KPI name to the aggregate query that produces it: which
// entity to scan, which date column scopes it to the window, and any static
// filters on top.
type metricSpec struct {
	entity    dependency.AggregateEntity
	dateField string
	kind      aggKind
	sumField  string
	pred      dependency.Predicate
}

var kpiSpecs = map[string]metricSpec{
	entity.MetricNewLeads: {
		entity:    dependency.EntityOpportunity,
		dateField: "created_at",
		kind:      kindCount,
		pred:      dependency.Predicate{dependency.Eq("stage", string(entity.StageLeads))},
	},
	entity.MetricOffersCreated: {
		entity:    dependency.EntityOpportunity,
		dateField: "created_at",
		kind:      kindCount,
	},
	entity.MetricDealsWon: {
		entity:    dependency.EntityOpportunity,
		dateField: "updated_at",
		kind:      kindCount,
		pred:      dependency.Predicate{dependency.Eq("stage", string(entity.StageClosedWon))},
	},
	entity.MetricRevenueWon: {
		entity:    dependency.EntityOpportunity,
		dateField: "updated_at",
		kind:      kindSum,
		sumField:  "value",
		pred:      dependency.Predicate{dependency.Eq("stage", string(entity.StageClosedWon))},
	},
	entity.MetricTasksCompleted: {
		entity:    dependency.EntityTask,
		dateField: "completed_at",
		kind:      kindCount,
		pred:      dependency.Predicate{dependency.Eq("status", string(entity.TaskCompleted))},
	},
	entity.MetricNewClients: {
		entity:    dependency.EntityClient,
		dateField: "created_at",
		kind:      kindCount,
	},
}

func (s *Service) fetchAggregate(ctx context.Context, spec metricSpec, window entity.TimeRange) (decimal.Decimal, error) {
	pred := make(dependency.Predicate, 0, len(spec.pred)+1)
	pred = append(pred, dependency.Between(spec.dateField, window.From, window.To))
	pred = append(pred, spec.pred...)
	if spec.kind == kindSum {
		return s.repo.Metrics().Sum(ctx, spec.entity, spec.sumField, pred)
	}
	n, err := s.repo.Metrics().Count(ctx, spec.entity, pred)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(n)), nil
}

// GetKpis computes every dashboard KPI for the current window and its
// comparison window. The current and previous reads of every metric run
// concurrently; a failed read marks only its own metric unavailable and the
// siblings keep their values.
func (s *Service) GetKpis(ctx context.Context, cur, prev entity.TimeRange) (*entity.KPIReport, error) {
	type pair struct {
		cur, prev   decimal.Decimal
		unavailable bool
	}

	var mu sync.Mutex
	pairs := make(map[string]*pair, len(kpiSpecs))
	for name := range kpiSpecs {
		pairs[name] = &pair{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, spec := range kpiSpecs {
		for _, side := range []struct {
			window entity.TimeRange
			curr   bool
		}{{cur, true}, {prev, false}} {
			name, spec, side := name, spec, side
			g.Go(func() error {
				v, err := s.fetchAggregate(gctx, spec, side.window)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					slog.Default().ErrorContext(gctx, "kpi read failed",
						slog.String("metric", name),
						slog.String("err", err.Error()),
					)
					pairs[name].unavailable = true
					return nil
				}
				if side.curr {
					pairs[name].cur = v
				} else {
					pairs[name].prev = v
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &entity.KPIReport{
		Period:     cur,
		PrevPeriod: prev,
		Metrics:    make(map[string]entity.Metric, len(pairs)),
	}
	for name, p := range pairs {
		if p.unavailable {
			report.Metrics[name] = entity.Metric{Unavailable: true}
			continue
		}
		report.Metrics[name] = entity.Metric{
			Value:     p.cur,
			Previous:  p.prev,
			ChangePct: Delta(p.cur, p.prev),
		}
	}
	return report, nil
}
