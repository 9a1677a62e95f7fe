package analytics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Delta returns the signed percentage change from previous to current.
// A zero previous value yields 100 when there is new activity and 0 when
// both periods are empty, so charts never divide by zero and a fresh period
// still reads as growth.
func Delta(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.GreaterThan(decimal.Zero) {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}
