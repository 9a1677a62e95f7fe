package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/robopoint/salesops-manager/internal/entity"
)

// ItemMargin is the computed margin contribution of one line item.
// HasCostBasis is false when no evidence price matched; the margin is then
// zero by business rule, not an error.
type ItemMargin struct {
	Item         entity.LineItem
	Margin       decimal.Decimal
	HasCostBasis bool
}

// MarginReport holds per-item margins and their total.
type MarginReport struct {
	PerItem []ItemMargin
	Total   decimal.Decimal
}

// ComputeMargins resolves each line item against the price book snapshot.
//
// purchase: (unitPrice - costPrice) * quantity
// lease:    (unitPrice - leaseCostPrice) * quantity * leaseMonths,
//
// where both lease prices are monthly rates. Lease lookup is an exact
// (model, tenor) match; there is no interpolation across tenors. The function
// is pure over its inputs.
func ComputeMargins(items []entity.LineItem, pb *entity.PriceBook) MarginReport {
	report := MarginReport{
		PerItem: make([]ItemMargin, 0, len(items)),
		Total:   decimal.Zero,
	}
	for _, item := range items {
		im := ItemMargin{Item: item, Margin: decimal.Zero}
		qty := decimal.NewFromInt(int64(item.Quantity))
		switch item.ContractType {
		case entity.ContractPurchase:
			if cost, ok := pb.LookupPurchasePrice(item.RobotModel); ok {
				im.Margin = item.UnitPrice.Sub(cost).Mul(qty)
				im.HasCostBasis = true
			}
		case entity.ContractLease:
			if cost, ok := pb.LookupLeasePrice(item.RobotModel, item.LeaseMonths); ok {
				months := decimal.NewFromInt(int64(item.LeaseMonths))
				im.Margin = item.UnitPrice.Sub(cost).Mul(qty).Mul(months)
				im.HasCostBasis = true
			}
		}
		report.PerItem = append(report.PerItem, im)
		report.Total = report.Total.Add(im.Margin)
	}
	return report
}
