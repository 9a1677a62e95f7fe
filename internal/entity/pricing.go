package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchasePrice holds the evidence (cost) price for buying out a robot model.
type PurchasePrice struct {
	Id         int             `db:"id"`
	RobotModel string          `db:"robot_model"`
	Price      decimal.Decimal `db:"price"`
	Currency   string          `db:"currency"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// LeasePrice holds the monthly evidence price for a robot model at a given
// tenor. A model may have any number of tenors, including none.
type LeasePrice struct {
	Id          int             `db:"id"`
	RobotModel  string          `db:"robot_model"`
	LeaseMonths int             `db:"lease_months"`
	Price       decimal.Decimal `db:"price"`
	Currency    string          `db:"currency"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type leaseKey struct {
	model  string
	months int
}

// PriceBook is a read-only snapshot of both pricing tiers, taken once per
// computation and passed into the margin calculator. Margins computed from
// the same snapshot are deterministic.
type PriceBook struct {
	purchase map[string]decimal.Decimal
	lease    map[leaseKey]decimal.Decimal
}

// NewPriceBook indexes the pricing rows. If a model appears more than once in
// the purchase tier the most recently updated row wins.
func NewPriceBook(purchase []PurchasePrice, lease []LeasePrice) *PriceBook {
	pb := &PriceBook{
		purchase: make(map[string]decimal.Decimal, len(purchase)),
		lease:    make(map[leaseKey]decimal.Decimal, len(lease)),
	}
	latest := make(map[string]time.Time, len(purchase))
	for _, p := range purchase {
		if ts, ok := latest[p.RobotModel]; ok && !p.UpdatedAt.After(ts) {
			continue
		}
		latest[p.RobotModel] = p.UpdatedAt
		pb.purchase[p.RobotModel] = p.Price
	}
	for _, l := range lease {
		pb.lease[leaseKey{model: l.RobotModel, months: l.LeaseMonths}] = l.Price
	}
	return pb
}

// LookupPurchasePrice returns the cost basis for buying out the given model.
func (pb *PriceBook) LookupPurchasePrice(model string) (decimal.Decimal, bool) {
	p, ok := pb.purchase[model]
	return p, ok
}

// LookupLeasePrice returns the monthly cost basis for the exact (model, tenor)
// pair. There is no fallback to adjacent tenors.
func (pb *PriceBook) LookupLeasePrice(model string, months int) (decimal.Decimal, bool) {
	p, ok := pb.lease[leaseKey{model: model, months: months}]
	return p, ok
}
