package match

import "github.com/shopspring/decimal"

// DefaultCostTolerance is the stock relative tolerance for cost comparison.
var DefaultCostTolerance = decimal.NewFromFloat(0.01)

// CostMatches reports whether two costs are the same within a relative
// tolerance. Zero handling is asymmetric: both-zero is a match (two absent
// quotes agree), exactly one zero never matches (a genuine zero cost is
// distinct from a nonzero one). The zero rule also guards the division.
func CostMatches(a, b, tolerance decimal.Decimal) bool {
	if a.IsZero() && b.IsZero() {
		return true
	}
	if a.IsZero() || b.IsZero() {
		return false
	}
	diff := a.Sub(b).Abs()
	return diff.Div(decimal.Max(a, b)).Cmp(tolerance) <= 0
}

// CostDifference returns the absolute difference between two costs.
func CostDifference(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}

// CostDiffPercent renders the relative difference between two costs to one
// decimal place, e.g. "16.7%". Returns "0.0%" when both are zero.
func CostDiffPercent(a, b decimal.Decimal) string {
	maxv := decimal.Max(a, b)
	if maxv.IsZero() {
		return "0.0%"
	}
	pct := a.Sub(b).Abs().Div(maxv).Mul(decimal.NewFromInt(100))
	return pct.StringFixed(1) + "%"
}
