package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange is returned when a window's bounds are out of order after
// normalization.
var ErrInvalidRange = errors.New("invalid range: from is after to")

// PeriodPreset selects a canonical reporting window.
type PeriodPreset string

const (
	PeriodThisMonth PeriodPreset = "this_month"
	PeriodLastMonth PeriodPreset = "last_month"
	PeriodYTD       PeriodPreset = "ytd"
	PeriodCustom    PeriodPreset = "custom"
)

// TimeRange is a reporting window. From is inclusive; To is exclusive for
// store queries (the window calculator hands out half-open ranges).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Days returns the number of calendar days the half-open range touches,
// counting both edge days.
func (tr TimeRange) Days() int {
	from := time.Date(tr.From.Year(), tr.From.Month(), tr.From.Day(), 0, 0, 0, 0, tr.From.Location())
	last := tr.To.Add(-time.Nanosecond)
	to := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location())
	return int(to.Sub(from).Hours()/24) + 1
}

// KPI metric names exposed by the dashboard.
const (
	MetricNewLeads       = "new_leads"
	MetricOffersCreated  = "offers_created"
	MetricDealsWon       = "deals_won"
	MetricRevenueWon     = "revenue_won"
	MetricTasksCompleted = "tasks_completed"
	MetricNewClients     = "new_clients"
)

// Metric is one KPI value with its previous-window comparison. Unavailable is
// set when the underlying read failed; a zero Value with Unavailable false is
// a genuine business zero.
type Metric struct {
	Value       decimal.Decimal
	Previous    decimal.Decimal
	ChangePct   decimal.Decimal
	Unavailable bool
}

// KPIReport maps metric name to its computed value for one window pair.
type KPIReport struct {
	Period     TimeRange
	PrevPeriod TimeRange
	Metrics    map[string]Metric
}

// TimeBucket is a single calendar day within a reporting window, carrying one
// counter per requested metric. Recomputed on every query, never persisted.
type TimeBucket struct {
	Date   time.Time
	Counts map[string]int
}

// FunnelStage is the aggregate for one pipeline stage within a window.
type FunnelStage struct {
	Stage Stage
	Count int
	Value decimal.Decimal
}

// FunnelReport is the stage-bucketed view of the pipeline for one window.
// TotalPipeline sums value over open (non-terminal) stages. WinRate is
// closed_won / (closed_won + closed_lost) * 100, zero when no deals closed.
type FunnelReport struct {
	Period        TimeRange
	Stages        []FunnelStage
	TotalPipeline decimal.Decimal
	WinRate       decimal.Decimal
}
