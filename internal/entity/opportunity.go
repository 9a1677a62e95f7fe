package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is a pipeline phase of an opportunity. The set and order are fixed;
// stage transitions are not enforced by the engine.
type Stage string

const (
	StageLeads        Stage = "leads"
	StageQualified    Stage = "qualified"
	StageProposalSent Stage = "proposal_sent"
	StageNegotiation  Stage = "negotiation"
	StageClosedWon    Stage = "closed_won"
	StageClosedLost   Stage = "closed_lost"
)

// PipelineStages lists all stages in funnel order.
var PipelineStages = []Stage{
	StageLeads,
	StageQualified,
	StageProposalSent,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// OpenStages are the non-terminal stages that count towards open pipeline value.
var OpenStages = []Stage{
	StageLeads,
	StageQualified,
	StageProposalSent,
	StageNegotiation,
}

// IsTerminal reports whether the stage ends the opportunity lifecycle.
func (s Stage) IsTerminal() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Opportunity is a sales pipeline record (an offer in UI terms).
type Opportunity struct {
	Id        int             `db:"id"`
	UUID      string          `db:"uuid"`
	Stage     Stage           `db:"stage"`
	Value     decimal.Decimal `db:"value"`
	Currency  string          `db:"currency"`
	OwnerId   int             `db:"owner_id"`
	ClientId  int             `db:"client_id"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// ContractType distinguishes how a line item is sold.
type ContractType string

const (
	ContractPurchase ContractType = "purchase"
	ContractLease    ContractType = "lease"
)

// LineItem belongs to exactly one opportunity. UnitPrice is the monthly rate
// for lease contracts and the one-off sale price for purchases. LeaseMonths
// is set iff ContractType is lease.
type LineItem struct {
	Id            int             `db:"id"`
	OpportunityId int             `db:"opportunity_id"`
	RobotModel    string          `db:"robot_model"`
	Quantity      int             `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	ContractType  ContractType    `db:"contract_type"`
	LeaseMonths   int             `db:"lease_months"`
}
