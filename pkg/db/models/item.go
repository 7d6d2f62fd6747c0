package models

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a tracked household product. AvgConsumptionPerDay is derived from
// the consumption value and unit and is only written by the items service.
type Item struct {
	ID                           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID                       uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:ux_items_user_name"`
	CategoryID                   *uuid.UUID            `gorm:"column:category_id;type:uuid;index"`
	Name                         string                `gorm:"column:name;type:text;not null;uniqueIndex:ux_items_user_name"`
	Quantity                     decimal.Decimal       `gorm:"column:quantity;type:numeric(10,3);not null;default:0"`
	UnitOfMeasure                enums.UnitOfMeasure   `gorm:"column:unit_of_measure;type:text;not null"`
	Price                        decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	AvgConsumptionValue          decimal.Decimal       `gorm:"column:avg_consumption_value;type:numeric(10,3);not null;default:0"`
	AvgConsumptionUnit           enums.ConsumptionUnit `gorm:"column:avg_consumption_unit;type:text;not null"`
	AvgConsumptionPerDay         decimal.Decimal       `gorm:"column:avg_consumption_per_day;type:numeric(16,6);not null;default:0"`
	LastStockUpdate              *time.Time            `gorm:"column:last_stock_update;type:date"`
	CriticalQuantityDaysOverride *int                  `gorm:"column:critical_quantity_days_override"`
	CreatedAt                    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
