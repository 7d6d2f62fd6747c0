package inventory

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is the API view of an item, including its current projection.
type ItemDTO struct {
	ID                           uuid.UUID       `json:"id"`
	CategoryID                   *uuid.UUID      `json:"categoryId,omitempty"`
	Name                         string          `json:"name"`
	Quantity                     decimal.Decimal `json:"quantity"`
	UnitOfMeasure                string          `json:"unitOfMeasure"`
	UnitLabel                    string          `json:"unitLabel"`
	Price                        decimal.Decimal `json:"price"`
	AvgConsumptionValue          decimal.Decimal `json:"avgConsumptionValue"`
	AvgConsumptionUnit           string          `json:"avgConsumptionUnit"`
	AvgConsumptionPerDay         decimal.Decimal `json:"avgConsumptionPerDay"`
	LastStockUpdate              *string         `json:"lastStockUpdate,omitempty"`
	CriticalQuantityDaysOverride *int            `json:"criticalQuantityDaysOverride,omitempty"`
	VirtualStock                 decimal.Decimal `json:"virtualStock"`
	Critical                     bool            `json:"critical"`
	UpdatedAt                    time.Time       `json:"updatedAt"`
}

// ItemPageDTO is one cursor page of items.
type ItemPageDTO struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

func toItemDTO(item *models.Item, assessment Assessment) ItemDTO {
	dto := ItemDTO{
		ID:                           item.ID,
		CategoryID:                   item.CategoryID,
		Name:                         item.Name,
		Quantity:                     item.Quantity,
		UnitOfMeasure:                item.UnitOfMeasure.String(),
		UnitLabel:                    item.UnitOfMeasure.Label(),
		Price:                        item.Price,
		AvgConsumptionValue:          item.AvgConsumptionValue,
		AvgConsumptionUnit:           item.AvgConsumptionUnit.String(),
		AvgConsumptionPerDay:         item.AvgConsumptionPerDay,
		CriticalQuantityDaysOverride: item.CriticalQuantityDaysOverride,
		VirtualStock:                 assessment.VirtualStock,
		Critical:                     assessment.Critical,
		UpdatedAt:                    item.UpdatedAt,
	}
	if item.LastStockUpdate != nil {
		day := item.LastStockUpdate.Format(time.DateOnly)
		dto.LastStockUpdate = &day
	}
	return dto
}

// RegisterItemRequest is the create body. Consumption value and unit travel together.
type RegisterItemRequest struct {
	Name                         string           `json:"name" validate:"required,min=1,max=120"`
	CategoryID                   *uuid.UUID       `json:"categoryId"`
	Quantity                     decimal.Decimal  `json:"quantity" validate:"gte=0"`
	UnitOfMeasure                string           `json:"unitOfMeasure" validate:"required,unit_of_measure"`
	Price                        decimal.Decimal  `json:"price" validate:"gte=0"`
	AvgConsumptionValue          *decimal.Decimal `json:"avgConsumptionValue" validate:"omitempty,gte=0"`
	AvgConsumptionUnit           *string          `json:"avgConsumptionUnit" validate:"omitempty,consumption_unit"`
	CriticalQuantityDaysOverride *int             `json:"criticalQuantityDaysOverride" validate:"omitempty,min=0,max=365"`
}

// UpdateItemRequest is the PATCH body; absent fields are left unchanged.
type UpdateItemRequest struct {
	Name                         *string                   `json:"name" validate:"omitempty,min=1,max=120"`
	CategoryID                   types.Nullable[uuid.UUID] `json:"categoryId"`
	Quantity                     *decimal.Decimal          `json:"quantity"`
	UnitOfMeasure                *string                   `json:"unitOfMeasure" validate:"omitempty,unit_of_measure"`
	Price                        *decimal.Decimal          `json:"price"`
	AvgConsumptionValue          *decimal.Decimal          `json:"avgConsumptionValue"`
	AvgConsumptionUnit           *string                   `json:"avgConsumptionUnit" validate:"omitempty,consumption_unit"`
	CriticalQuantityDaysOverride types.Nullable[int]       `json:"criticalQuantityDaysOverride"`
}

// StockAdditionRequest is the body of a manual restock.
type StockAdditionRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// UnitDTO lists a unit of measure for pickers.
type UnitDTO struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Units lists every unit of measure in display order.
func Units() []UnitDTO {
	out := make([]UnitDTO, 0, len(enums.UnitsOfMeasure))
	for _, unit := range enums.UnitsOfMeasure {
		out = append(out, UnitDTO{Name: unit.String(), Label: unit.Label()})
	}
	return out
}
