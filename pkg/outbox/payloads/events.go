package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemBecameCriticalEvent is emitted when an item is newly queued on a list.
type ItemBecameCriticalEvent struct {
	ItemID         uuid.UUID       `json:"itemId"`
	UserID         uuid.UUID       `json:"userId"`
	ShoppingListID uuid.UUID       `json:"shoppingListId"`
	ItemName       string          `json:"itemName"`
	VirtualStock   decimal.Decimal `json:"virtualStock"`
	Threshold      decimal.Decimal `json:"threshold"`
}

// ShoppingListFinalizedEvent summarizes a closed shopping trip.
type ShoppingListFinalizedEvent struct {
	ShoppingListID   uuid.UUID       `json:"shoppingListId"`
	UserID           uuid.UUID       `json:"userId"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	PurchasedEntries int             `json:"purchasedEntries"`
	SkippedEntries   int             `json:"skippedEntries"`
	FinalizedAt      time.Time       `json:"finalizedAt"`
}
