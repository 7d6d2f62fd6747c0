package shoppinglists

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryDTO struct {
	ID                uuid.UUID        `json:"id"`
	ItemID            *uuid.UUID       `json:"itemId"`
	ItemName          string           `json:"itemName,omitempty"`
	UnitOfMeasure     string           `json:"unitOfMeasure,omitempty"`
	PurchasedQuantity decimal.Decimal  `json:"purchasedQuantity"`
	UnitaryPrice      *decimal.Decimal `json:"unitaryPrice"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
}

type ListDTO struct {
	ID          uuid.UUID       `json:"id"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	FinalizedAt *time.Time      `json:"finalizedAt,omitempty"`
	Items       []EntryDTO      `json:"items"`
	Total       decimal.Decimal `json:"total"`
}

// SummaryDTO is a list without its entries, used by history pages.
type SummaryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

type PageDTO struct {
	Lists      []SummaryDTO `json:"lists"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// UpdateEntryRequest edits a single entry. Sending unitaryPrice as null clears it.
type UpdateEntryRequest struct {
	PurchasedQuantity *decimal.Decimal                `json:"purchasedQuantity"`
	UnitaryPrice      types.Nullable[decimal.Decimal] `json:"unitaryPrice"`
}

// PurchasedItem is the outcome for one entry in a finalize request.
type PurchasedItem struct {
	EntryID           uuid.UUID        `json:"entryId" validate:"required"`
	PurchasedQuantity decimal.Decimal  `json:"purchasedQuantity"`
	UnitaryPrice      *decimal.Decimal `json:"unitaryPrice"`
}

type FinalizeRequest struct {
	Items []PurchasedItem `json:"items" validate:"dive"`
}

func toEntryDTO(entry models.ShoppingListItem) EntryDTO {
	dto := EntryDTO{
		ID:                entry.ID,
		ItemID:            entry.ItemID,
		ItemName:          entry.ItemName,
		PurchasedQuantity: entry.PurchasedQuantity,
		Subtotal:          entry.Subtotal,
	}
	if entry.UnitaryPrice.Valid {
		price := entry.UnitaryPrice.Decimal
		dto.UnitaryPrice = &price
	}
	if entry.Item != nil {
		dto.ItemName = entry.Item.Name
		dto.UnitOfMeasure = entry.Item.UnitOfMeasure.String()
	}
	return dto
}

func toListDTO(list *models.ShoppingList, entries []models.ShoppingListItem) ListDTO {
	dto := ListDTO{
		ID:          list.ID,
		Active:      list.Active,
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
		FinalizedAt: list.FinalizedAt,
		Items:       make([]EntryDTO, 0, len(entries)),
		Total:       decimal.Zero,
	}
	for _, entry := range entries {
		dto.Items = append(dto.Items, toEntryDTO(entry))
		dto.Total = dto.Total.Add(entry.Subtotal)
	}
	dto.Total = types.RoundMoney(dto.Total)
	return dto
}

func toSummaryDTO(list models.ShoppingList) SummaryDTO {
	return SummaryDTO{
		ID:          list.ID,
		Active:      list.Active,
		CreatedAt:   list.CreatedAt,
		FinalizedAt: list.FinalizedAt,
	}
}
