package inventory

import (
	"testing"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveCriticalDaysPrefersOverride(t *testing.T) {
	user := &models.User{CriticalQuantityDays: 5}
	item := testItem("1", "1", nil)
	assert.Equal(t, 5, ResolveCriticalDays(item, user))

	item.CriticalQuantityDaysOverride = intPtr(0)
	assert.Equal(t, 0, ResolveCriticalDays(item, user))
}

func TestAssessHealthyItem(t *testing.T) {
	user := &models.User{CriticalQuantityDays: 5}
	item := testItem("10", "1", daysAgo(3))

	got := Assess(item, user, fixedNow)
	assert.True(t, decimal.NewFromInt(7).Equal(got.VirtualStock))
	assert.True(t, decimal.NewFromInt(5).Equal(got.Threshold))
	assert.False(t, got.Critical)
}

func TestAssessDepletedItem(t *testing.T) {
	user := &models.User{CriticalQuantityDays: 5}
	item := testItem("2", "1", daysAgo(2))

	got := Assess(item, user, fixedNow)
	assert.True(t, got.VirtualStock.IsZero())
	assert.True(t, got.Critical)
}

func TestThresholdBoundaryIsCritical(t *testing.T) {
	item := testItem("5", "1", daysAgo(0))
	assert.True(t, IsCritical(item, 5, decimal.NewFromInt(5)))
	assert.False(t, IsCritical(item, 5, decimal.RequireFromString("5.001")))
}

func TestZeroRateNeverCritical(t *testing.T) {
	item := testItem("0", "0", daysAgo(10))
	assert.False(t, IsCritical(item, 30, decimal.Zero))
	assert.False(t, Assess(item, &models.User{CriticalQuantityDays: 30}, fixedNow).Critical)
}

func TestCriticalityIsMonotonicInDays(t *testing.T) {
	item := testItem("6", "1", daysAgo(0))
	stock := VirtualStock(item, fixedNow)
	seen := false
	for days := 0; days <= 10; days++ {
		critical := IsCritical(item, days, stock)
		if seen {
			assert.True(t, critical, "days=%d", days)
		}
		seen = seen || critical
	}
	assert.True(t, seen)
}
