package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesUser is a salesperson eligible for the leaderboard. Role filtering
// happens outside the engine.
type SalesUser struct {
	Id       int    `db:"id"`
	UUID     string `db:"uuid"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	Role     string `db:"role"`
	IsActive bool   `db:"is_active"`
}

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is a work item owned by a salesperson.
type Task struct {
	Id          int        `db:"id"`
	OwnerId     int        `db:"owner_id"`
	Title       string     `db:"title"`
	Status      TaskStatus `db:"status"`
	DueAt       *time.Time `db:"due_at"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Client is a customer account owned by a salesperson.
type Client struct {
	Id        int       `db:"id"`
	OwnerId   int       `db:"owner_id"`
	Name      string    `db:"name"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// Goal is a target for a metric over a period. CurrentValue is maintained
// externally; progress is computed on read and never stored.
type Goal struct {
	Id           int             `db:"id"`
	Metric       string          `db:"metric"`
	TargetValue  decimal.Decimal `db:"target_value"`
	CurrentValue decimal.Decimal `db:"current_value"`
	PeriodStart  time.Time       `db:"period_start"`
	PeriodEnd    time.Time       `db:"period_end"`
}
