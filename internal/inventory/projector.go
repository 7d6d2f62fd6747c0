// Package inventory projects stock depletion, decides criticality and keeps
// the owner's active shopping list in step with it.
package inventory

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Today truncates t to its UTC calendar date.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ElapsedDays counts whole calendar days from last to now, never negative.
// A missing last update means the stored quantity is current.
func ElapsedDays(last *time.Time, now time.Time) int64 {
	if last == nil {
		return 0
	}
	days := int64(Today(now).Sub(Today(*last)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// VirtualStock is the projected quantity left at now, assuming linear
// depletion at the item's per-day rate since its last stock update.
func VirtualStock(item *models.Item, now time.Time) decimal.Decimal {
	elapsed := decimal.NewFromInt(ElapsedDays(item.LastStockUpdate, now))
	projected := item.Quantity.Sub(item.AvgConsumptionPerDay.Mul(elapsed))
	if projected.IsNegative() {
		return decimal.Zero
	}
	return types.RoundQuantity(projected)
}
