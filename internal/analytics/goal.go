package analytics

import "github.com/shopspring/decimal"

// GoalProgress converts (current, target) into a clamped whole percentage.
// Progress is never reported above 100; a zero or negative target yields 0.
func GoalProgress(current, target decimal.Decimal) int {
	if target.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct := current.Div(target).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return 100
	}
	return int(pct.Round(0).IntPart())
}
