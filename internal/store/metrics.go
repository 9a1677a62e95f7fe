package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

type metricsStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Metrics() dependency.Metrics {
	return &metricsStore{MYSQLStore: ms}
}

func (ms *metricsStore) Count(ctx context.Context, e dependency.AggregateEntity, p dependency.Predicate) (int, error) {
	table, err := tableFor(e)
	if err != nil {
		return 0, err
	}
	params := map[string]any{}
	where, err := buildWhere(e, p, params)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where)
	n, err := QueryCountNamed(ctx, ms.DB(), query, params)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", e, err)
	}
	return n, nil
}

func (ms *metricsStore) Sum(ctx context.Context, e dependency.AggregateEntity, field string, p dependency.Predicate) (decimal.Decimal, error) {
	table, err := tableFor(e)
	if err != nil {
		return decimal.Zero, err
	}
	col, err := fieldFor(e, field)
	if err != nil {
		return decimal.Zero, err
	}
	params := map[string]any{}
	where, err := buildWhere(e, p, params)
	if err != nil {
		return decimal.Zero, err
	}
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) AS v FROM %s%s", col, table, where)
	r, err := QueryNamedOne[struct {
		V decimal.Decimal `db:"v"`
	}](ctx, ms.DB(), query, params)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s.%s: %w", e, field, err)
	}
	return r.V, nil
}

// CountByDay batches the per-day reads of a window into one grouped query.
// Days with no rows are absent from the result; the time-series builder fills
// the gaps.
func (ms *metricsStore) CountByDay(ctx context.Context, e dependency.AggregateEntity, dateField string, from, to time.Time, p dependency.Predicate) (map[string]int, error) {
	table, err := tableFor(e)
	if err != nil {
		return nil, err
	}
	col, err := fieldFor(e, dateField)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"from": from, "to": to}
	where, err := buildWhere(e, p, params)
	if err != nil {
		return nil, err
	}
	cond := fmt.Sprintf("%s >= :from AND %s < :to", col, col)
	if where == "" {
		where = " WHERE " + cond
	} else {
		where += " AND " + cond
	}
	query := fmt.Sprintf(`
		SELECT DATE(%s) AS d, COUNT(*) AS cnt
		FROM %s%s
		GROUP BY DATE(%s)
		ORDER BY d
	`, col, table, where, col)
	rows, err := QueryListNamed[struct {
		D     time.Time `db:"d"`
		Count int       `db:"cnt"`
	}](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("count by day %s.%s: %w", e, dateField, err)
	}
	result := make(map[string]int, len(rows))
	for _, r := range rows {
		result[r.D.Format("2006-01-02")] = r.Count
	}
	return result, nil
}

func (ms *metricsStore) FunnelByStage(ctx context.Context, from, to time.Time) (map[entity.Stage]entity.FunnelStage, error) {
	query := `
		SELECT stage, COUNT(*) AS cnt, COALESCE(SUM(value), 0) AS total
		FROM opportunity
		WHERE created_at >= :from AND created_at < :to
		GROUP BY stage
	`
	rows, err := QueryListNamed[struct {
		Stage entity.Stage    `db:"stage"`
		Count int             `db:"cnt"`
		Total decimal.Decimal `db:"total"`
	}](ctx, ms.DB(), query, map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("funnel by stage: %w", err)
	}
	result := make(map[entity.Stage]entity.FunnelStage, len(rows))
	for _, r := range rows {
		result[r.Stage] = entity.FunnelStage{Stage: r.Stage, Count: r.Count, Value: r.Total}
	}
	return result, nil
}
