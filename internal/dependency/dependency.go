package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robopoint/salesops-manager/internal/entity"
	"github.com/shopspring/decimal"
)

type (
	// AggregateEntity names a queryable entity for the aggregate engine.
	AggregateEntity string

	// CondOp is a predicate operator.
	CondOp int
)

const (
	EntityOpportunity AggregateEntity = "opportunity"
	EntityTask        AggregateEntity = "task"
	EntityClient      AggregateEntity = "client"
)

const (
	OpEquals CondOp = iota + 1
	OpInSet
	OpDateRange
)

// Condition is one predicate clause. For OpDateRange, From is inclusive and
// To is exclusive unless ToInclusive is set.
type Condition struct {
	Field       string
	Op          CondOp
	Value       any
	Values      []any
	From        time.Time
	To          time.Time
	ToInclusive bool
}

// Predicate is a conjunction of conditions.
type Predicate []Condition

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	Opportunities interface {
		// GetOpportunityByUUID returns a single opportunity.
		GetOpportunityByUUID(ctx context.Context, uuid string) (*entity.Opportunity, error)
		// ListOpportunities returns opportunities matching the predicate,
		// ordered by the given field.
		ListOpportunities(ctx context.Context, p Predicate, orderBy string) ([]entity.Opportunity, error)
		// GetLineItems returns the line items of one opportunity.
		GetLineItems(ctx context.Context, opportunityId int) ([]entity.LineItem, error)
	}

	Pricing interface {
		// GetPriceBook loads both pricing tiers as a read-only snapshot.
		GetPriceBook(ctx context.Context) (*entity.PriceBook, error)
		// GetPurchasePrices returns the raw purchase tier rows.
		GetPurchasePrices(ctx context.Context) ([]entity.PurchasePrice, error)
		// GetLeasePrices returns the raw lease tier rows.
		GetLeasePrices(ctx context.Context) ([]entity.LeasePrice, error)
	}

	Tasks interface {
		ListTasks(ctx context.Context, p Predicate, orderBy string) ([]entity.Task, error)
	}

	Clients interface {
		ListClients(ctx context.Context, p Predicate, orderBy string) ([]entity.Client, error)
	}

	Users interface {
		// GetSalesUsers returns active salespeople eligible for the leaderboard.
		GetSalesUsers(ctx context.Context) ([]entity.SalesUser, error)
	}

	Goals interface {
		ListGoals(ctx context.Context, now time.Time) ([]entity.Goal, error)
	}

	// Metrics is the aggregate query engine's store side: grouped counts and
	// sums scoped to a window. Implementations may batch per-day reads into a
	// single grouped query as long as per-day correctness is preserved.
	Metrics interface {
		// Count returns the number of rows of the entity matching the predicate.
		Count(ctx context.Context, e AggregateEntity, p Predicate) (int, error)
		// Sum returns the sum of field over rows matching the predicate.
		Sum(ctx context.Context, e AggregateEntity, field string, p Predicate) (decimal.Decimal, error)
		// CountByDay returns day-bucketed counts of the entity's rows whose
		// dateField falls in [from, to).
		CountByDay(ctx context.Context, e AggregateEntity, dateField string, from, to time.Time, p Predicate) (map[string]int, error)
		// FunnelByStage returns per-stage count and monetary value for
		// opportunities created in [from, to).
		FunnelByStage(ctx context.Context, from, to time.Time) (map[entity.Stage]entity.FunnelStage, error)
	}

	Repository interface {
		Opportunities() Opportunities
		Pricing() Pricing
		Tasks() Tasks
		Clients() Clients
		Users() Users
		Goals() Goals
		Metrics() Metrics
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
	}

	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)

// Eq builds a field-equals condition.
func Eq(field string, v any) Condition {
	return Condition{Field: field, Op: OpEquals, Value: v}
}

// In builds a field-in-set condition.
func In(field string, vs ...any) Condition {
	return Condition{Field: field, Op: OpInSet, Values: vs}
}

// Between builds a half-open [from, to) date range condition.
func Between(field string, from, to time.Time) Condition {
	return Condition{Field: field, Op: OpDateRange, From: from, To: to}
}
