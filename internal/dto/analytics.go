package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robopoint/salesops-manager/internal/analytics"
	"github.com/robopoint/salesops-manager/internal/entity"
)

const dateLayout = "2006-01-02"

type Metric struct {
	Value       decimal.Decimal `json:"value"`
	Previous    decimal.Decimal `json:"previousValue"`
	ChangePct   decimal.Decimal `json:"percentChange"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

type KpiReport struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	PrevFrom string            `json:"prevFrom"`
	PrevTo   string            `json:"prevTo"`
	Metrics  map[string]Metric `json:"metrics"`
}

func KpiReportFromEntity(r *entity.KPIReport) KpiReport {
	out := KpiReport{
		From:     r.Period.From.Format(time.RFC3339),
		To:       r.Period.To.Format(time.RFC3339),
		PrevFrom: r.PrevPeriod.From.Format(time.RFC3339),
		PrevTo:   r.PrevPeriod.To.Format(time.RFC3339),
		Metrics:  make(map[string]Metric, len(r.Metrics)),
	}
	for name, m := range r.Metrics {
		out.Metrics[name] = Metric{
			Value:       m.Value,
			Previous:    m.Previous,
			ChangePct:   m.ChangePct,
			Unavailable: m.Unavailable,
		}
	}
	return out
}

type FunnelStage struct {
	Stage string          `json:"stage"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

type FunnelReport struct {
	Stages        []FunnelStage   `json:"stages"`
	TotalPipeline decimal.Decimal `json:"totalPipeline"`
	WinRate       decimal.Decimal `json:"winRate"`
}

func FunnelReportFromEntity(r *entity.FunnelReport) FunnelReport {
	out := FunnelReport{
		Stages:        make([]FunnelStage, len(r.Stages)),
		TotalPipeline: r.TotalPipeline,
		WinRate:       r.WinRate,
	}
	for i, st := range r.Stages {
		out.Stages[i] = FunnelStage{Stage: string(st.Stage), Count: st.Count, Value: st.Value}
	}
	return out
}

type TimeBucket struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

func TimeBucketsFromEntity(buckets []entity.TimeBucket) []TimeBucket {
	out := make([]TimeBucket, len(buckets))
	for i, b := range buckets {
		out[i] = TimeBucket{Date: b.Date.Format(dateLayout), Counts: b.Counts}
	}
	return out
}

type Opportunity struct {
	UUID      string          `json:"uuid"`
	Stage     string          `json:"stage"`
	Open      bool            `json:"open"`
	Value     decimal.Decimal `json:"value"`
	Currency  string          `json:"currency"`
	OwnerId   int             `json:"ownerId"`
	ClientId  int             `json:"clientId"`
	CreatedAt string          `json:"createdAt"`
}

func OpportunitiesFromEntity(opps []entity.Opportunity) []Opportunity {
	out := make([]Opportunity, len(opps))
	for i, o := range opps {
		out[i] = Opportunity{
			UUID:      o.UUID,
			Stage:     string(o.Stage),
			Open:      !o.Stage.IsTerminal(),
			Value:     o.Value,
			Currency:  o.Currency,
			OwnerId:   o.OwnerId,
			ClientId:  o.ClientId,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

type ItemMargin struct {
	RobotModel   string          `json:"robotModel"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ContractType string          `json:"contractType"`
	LeaseMonths  int             `json:"leaseMonths,omitempty"`
	Margin       decimal.Decimal `json:"margin"`
	HasCostBasis bool            `json:"hasCostBasis"`
}

type MarginReport struct {
	Items []ItemMargin    `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func MarginReportFromEntity(r *analytics.MarginReport) MarginReport {
	out := MarginReport{
		Items: make([]ItemMargin, len(r.PerItem)),
		Total: r.Total,
	}
	for i, im := range r.PerItem {
		out.Items[i] = ItemMargin{
			RobotModel:   im.Item.RobotModel,
			Quantity:     im.Item.Quantity,
			UnitPrice:    im.Item.UnitPrice,
			ContractType: string(im.Item.ContractType),
			LeaseMonths:  im.Item.LeaseMonths,
			Margin:       im.Margin,
			HasCostBasis: im.HasCostBasis,
		}
	}
	return out
}

type LeaderboardEntry struct {
	UserId          int             `json:"userId"`
	UserName        string          `json:"userName"`
	Rank            int             `json:"rank"`
	TotalOffers     int             `json:"totalOffers"`
	WonOffers       int             `json:"wonOffers"`
	ConversionRate  decimal.Decimal `json:"conversionRate"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	AverageDealSize decimal.Decimal `json:"averageDealSize"`
	CompletedTasks  int             `json:"completedTasks"`
	ActiveClients   int             `json:"activeClients"`
	Achievements    []string        `json:"achievements,omitempty"`
}

func LeaderboardFromEntity(records []entity.PerformanceRecord) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(records))
	for i, r := range records {
		out[i] = LeaderboardEntry{
			UserId:          r.UserId,
			UserName:        r.UserName,
			Rank:            r.Rank,
			TotalOffers:     r.TotalOffers,
			WonOffers:       r.WonOffers,
			ConversionRate:  r.ConversionRate,
			TotalRevenue:    r.TotalRevenue,
			AverageDealSize: r.AverageDealSize,
			CompletedTasks:  r.CompletedTasks,
			ActiveClients:   r.ActiveClients,
			Achievements:    r.Achievements,
		}
	}
	return out
}

type GoalProgress struct {
	Id           int             `json:"id"`
	Metric       string          `json:"metric"`
	TargetValue  decimal.Decimal `json:"targetValue"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	PeriodStart  string          `json:"periodStart"`
	PeriodEnd    string          `json:"periodEnd"`
	Progress     int             `json:"progress"`
}

func GoalProgressFromEntity(gs []analytics.GoalWithProgress) []GoalProgress {
	out := make([]GoalProgress, len(gs))
	for i, g := range gs {
		out[i] = GoalProgress{
			Id:           g.Goal.Id,
			Metric:       g.Goal.Metric,
			TargetValue:  g.Goal.TargetValue,
			CurrentValue: g.Goal.CurrentValue,
			PeriodStart:  g.Goal.PeriodStart.Format(dateLayout),
			PeriodEnd:    g.Goal.PeriodEnd.Format(dateLayout),
			Progress:     g.Progress,
		}
	}
	return out
}
