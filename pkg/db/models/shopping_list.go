package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShoppingList is active until finalized. At most one active list exists per
// user, enforced by the partial unique index ux_shopping_lists_user_active.
type ShoppingList struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:ux_shopping_lists_user_active,where:active = true"`
	Active      bool               `gorm:"column:active;not null"`
	FinalizedAt *time.Time         `gorm:"column:finalized_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
	Items       []ShoppingListItem `gorm:"foreignKey:ShoppingListID"`
}

func (l *ShoppingList) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// ShoppingListItem is one queued item. Subtotal always mirrors
// PurchasedQuantity x UnitaryPrice. ItemID is nil once the item was deleted
// after the list was finalized; ItemName keeps the name it was bought under.
type ShoppingListItem struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ShoppingListID    uuid.UUID           `gorm:"column:shopping_list_id;type:uuid;not null;uniqueIndex:ux_shopping_list_items_list_item"`
	ItemID            *uuid.UUID          `gorm:"column:item_id;type:uuid;index;uniqueIndex:ux_shopping_list_items_list_item"`
	ItemName          string              `gorm:"column:item_name;not null;default:''"`
	PurchasedQuantity decimal.Decimal     `gorm:"column:purchased_quantity;type:numeric(10,3);not null;default:0"`
	UnitaryPrice      decimal.NullDecimal `gorm:"column:unitary_price;type:numeric(10,2)"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	Item              *Item               `gorm:"foreignKey:ItemID;constraint:OnDelete:SET NULL"`
}

func (e *ShoppingListItem) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
