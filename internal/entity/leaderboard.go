package entity

import "github.com/shopspring/decimal"

// SortMetric selects which aggregate the leaderboard is ranked by.
type SortMetric string

const (
	SortByRevenue        SortMetric = "revenue"
	SortByConversionRate SortMetric = "conversionRate"
	SortByDealsWon       SortMetric = "dealsWon"
	SortByTasksCompleted SortMetric = "tasksCompleted"
)

// Achievement tags are threshold predicates over a performance record. They
// are presentational only and never feed back into ranking.
const (
	AchievementCloser     = "closer"      // conversion rate >= 50
	AchievementRainmaker  = "rainmaker"   // total revenue >= 100000
	AchievementDealHunter = "deal_hunter" // won offers >= 10
	AchievementTaskMaster = "task_master" // completed tasks >= 20
	AchievementFarmer     = "farmer"      // active clients >= 5
)

// PerformanceRecord is the derived per-salesperson aggregate for one
// leaderboard invocation. Rank is 1-based and dense; ties keep input order.
type PerformanceRecord struct {
	UserId          int
	UserName        string
	TotalOffers     int
	WonOffers       int
	ConversionRate  decimal.Decimal
	TotalRevenue    decimal.Decimal
	AverageDealSize decimal.Decimal
	CompletedTasks  int
	ActiveClients   int
	Rank            int
	Achievements    []string
}
