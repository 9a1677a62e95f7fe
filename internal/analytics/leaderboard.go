package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

var (
	achievementConversionMin = decimal.NewFromInt(50)
	achievementRevenueMin    = decimal.NewFromInt(100000)
)

const (
	achievementWonMin     = 10
	achievementTasksMin   = 20
	achievementClientsMin = 5
)

// GetLeaderboard computes one performance record per salesperson for the
// window, ranked descending by the selected metric. Per-user reads run
// concurrently; the ranking itself is synchronous and stable.
func (s *Service) GetLeaderboard(ctx context.Context, window entity.TimeRange, sortBy entity.SortMetric) ([]entity.PerformanceRecord, error) {
	if window.From.After(window.To) {
		return nil, entity.ErrInvalidRange
	}
	users, err := s.repo.Users().GetSalesUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("sales users: %w", err)
	}

	records := make([]entity.PerformanceRecord, len(users))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			rec, err := s.userPerformance(gctx, u, window)
			if err != nil {
				return fmt.Errorf("performance for user %d: %w", u.Id, err)
			}
			records[i] = *rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	RankRecords(records, sortBy)
	return records, nil
}

func (s *Service) userPerformance(ctx context.Context, u entity.SalesUser, window entity.TimeRange) (*entity.PerformanceRecord, error) {
	m := s.repo.Metrics()
	owner := dependency.Eq("owner_id", u.Id)
	created := dependency.Between("created_at", window.From, window.To)
	won := dependency.Eq("stage", string(entity.StageClosedWon))

	totalOffers, err := m.Count(ctx, dependency.EntityOpportunity, dependency.Predicate{owner, created})
	if err != nil {
		return nil, fmt.Errorf("total offers: %w", err)
	}
	wonOffers, err := m.Count(ctx, dependency.EntityOpportunity, dependency.Predicate{owner, created, won})
	if err != nil {
		return nil, fmt.Errorf("won offers: %w", err)
	}
	totalRevenue, err := m.Sum(ctx, dependency.EntityOpportunity, "value", dependency.Predicate{owner, created, won})
	if err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	completedTasks, err := m.Count(ctx, dependency.EntityTask, dependency.Predicate{
		owner,
		dependency.Eq("status", string(entity.TaskCompleted)),
		dependency.Between("completed_at", window.From, window.To),
	})
	if err != nil {
		return nil, fmt.Errorf("completed tasks: %w", err)
	}
	activeClients, err := m.Count(ctx, dependency.EntityClient, dependency.Predicate{
		owner,
		dependency.Eq("is_active", true),
	})
	if err != nil {
		return nil, fmt.Errorf("active clients: %w", err)
	}

	rec := &entity.PerformanceRecord{
		UserId:         u.Id,
		UserName:       u.Name,
		TotalOffers:    totalOffers,
		WonOffers:      wonOffers,
		TotalRevenue:   totalRevenue,
		CompletedTasks: completedTasks,
		ActiveClients:  activeClients,
	}
	if totalOffers > 0 {
		rec.ConversionRate = decimal.NewFromInt(int64(wonOffers)).
			Div(decimal.NewFromInt(int64(totalOffers))).
			Mul(hundred)
	}
	if wonOffers > 0 {
		rec.AverageDealSize = totalRevenue.Div(decimal.NewFromInt(int64(wonOffers)))
	}
	return rec, nil
}

func sortKey(rec entity.PerformanceRecord, sortBy entity.SortMetric) decimal.Decimal {
	switch sortBy {
	case entity.SortByConversionRate:
		return rec.ConversionRate
	case entity.SortByDealsWon:
		return decimal.NewFromInt(int64(rec.WonOffers))
	case entity.SortByTasksCompleted:
		return decimal.NewFromInt(int64(rec.CompletedTasks))
	default:
		return rec.TotalRevenue
	}
}

// RankRecords sorts records descending by the selected metric and assigns
// 1-based dense ranks in place. The sort is stable: true ties keep their
// input order and get distinct consecutive ranks, there is no secondary key.
// Achievement tags are recomputed for every record.
func RankRecords(records []entity.PerformanceRecord, sortBy entity.SortMetric) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i], sortBy).GreaterThan(sortKey(records[j], sortBy))
	})
	for i := range records {
		records[i].Rank = i + 1
		records[i].Achievements = achievements(records[i])
	}
}

func achievements(rec entity.PerformanceRecord) []string {
	var tags []string
	if rec.ConversionRate.GreaterThanOrEqual(achievementConversionMin) {
		tags = append(tags, entity.AchievementCloser)
	}
	if rec.TotalRevenue.GreaterThanOrEqual(achievementRevenueMin) {
		tags = append(tags, entity.AchievementRainmaker)
	}
	if rec.WonOffers >= achievementWonMin {
		tags = append(tags, entity.AchievementDealHunter)
	}
	if rec.CompletedTasks >= achievementTasksMin {
		tags = append(tags, entity.AchievementTaskMaster)
	}
	if rec.ActiveClients >= achievementClientsMin {
		tags = append(tags, entity.AchievementFarmer)
	}
	return tags
}
