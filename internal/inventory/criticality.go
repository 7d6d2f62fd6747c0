package inventory

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ResolveCriticalDays prefers the item override over the user default.
func ResolveCriticalDays(item *models.Item, user *models.User) int {
	if item.CriticalQuantityDaysOverride != nil {
		return *item.CriticalQuantityDaysOverride
	}
	if user == nil {
		return 0
	}
	return user.CriticalQuantityDays
}

// Threshold is the stock needed to cover criticalDays of consumption.
func Threshold(item *models.Item, criticalDays int) decimal.Decimal {
	return item.AvgConsumptionPerDay.Mul(decimal.NewFromInt(int64(criticalDays)))
}

// IsCritical reports whether virtualStock no longer covers criticalDays of
// consumption. Items that are not consumed are never critical.
func IsCritical(item *models.Item, criticalDays int, virtualStock decimal.Decimal) bool {
	if !item.AvgConsumptionPerDay.IsPositive() {
		return false
	}
	return virtualStock.LessThanOrEqual(Threshold(item, criticalDays))
}

// Assessment is the outcome of evaluating one item.
type Assessment struct {
	ItemID       string          `json:"itemId"`
	VirtualStock decimal.Decimal `json:"virtualStock"`
	CriticalDays int             `json:"criticalDays"`
	Threshold    decimal.Decimal `json:"threshold"`
	Critical     bool            `json:"critical"`
	Enqueued     bool            `json:"enqueued"`
}

// Assess projects and evaluates item for its owner at now.
func Assess(item *models.Item, user *models.User, now time.Time) Assessment {
	stock := VirtualStock(item, now)
	days := ResolveCriticalDays(item, user)
	return Assessment{
		ItemID:       item.ID.String(),
		VirtualStock: stock,
		CriticalDays: days,
		Threshold:    Threshold(item, days),
		Critical:     IsCritical(item, days, stock),
	}
}
