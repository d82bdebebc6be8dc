package policy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PointsForAmount returns how many whole points a monetary amount buys in region.
// Fractions of a point are not sold: the result is floor(amount / costPerPoint).
func PointsForAmount(r Region, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %s", amount)
	}
	if !r.CostPerPoint.IsPositive() {
		return 0, fmt.Errorf("region %s has no point price", r.ID)
	}
	points := amount.Div(r.CostPerPoint).Floor()
	if points.LessThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("amount %s %s is below the price of one point (%s)", amount.StringFixed(2), r.Currency, r.CostPerPoint)
	}
	return points.IntPart(), nil
}

// AmountForPoints returns the monetary price of points in region.
func AmountForPoints(r Region, points int64) decimal.Decimal {
	return r.CostPerPoint.Mul(decimal.NewFromInt(points)).Round(2)
}
