// Package consumption converts a user supplied consumption figure into the
// per-day depletion rate used by stock projection.
package consumption

import (
	"fmt"

	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// RateScale is the number of fractional digits kept on per-day rates.
const RateScale = 6

var (
	daysPerWeek  = decimal.NewFromInt(7)
	daysPerMonth = decimal.NewFromInt(30)
)

// Normalize returns value expressed per day. Division rounds half up at RateScale.
func Normalize(value decimal.Decimal, unit enums.ConsumptionUnit) (decimal.Decimal, error) {
	switch unit {
	case enums.ConsumptionPerDay:
		return value, nil
	case enums.ConsumptionPerWeek:
		return value.DivRound(daysPerWeek, RateScale), nil
	case enums.ConsumptionPerMonth:
		return value.DivRound(daysPerMonth, RateScale), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported consumption unit %q", unit)
	}
}

// Rate is a consumption figure plus its normalized per-day form. It is the
// only way the derived rate gets computed, so value and unit can never drift
// from it.
type Rate struct {
	Value  decimal.Decimal
	Unit   enums.ConsumptionUnit
	PerDay decimal.Decimal
}

// NewRate validates the pair and computes the per-day rate.
func NewRate(value decimal.Decimal, unit enums.ConsumptionUnit) (Rate, error) {
	if value.IsNegative() {
		return Rate{}, fmt.Errorf("consumption value must be >= 0")
	}
	perDay, err := Normalize(value, unit)
	if err != nil {
		return Rate{}, err
	}
	return Rate{Value: value, Unit: unit, PerDay: perDay}, nil
}
