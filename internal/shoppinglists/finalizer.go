package shoppinglists

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stockRecorder pushes purchased quantities back into inventory.
type stockRecorder interface {
	RecordStockAdditionTx(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID, added decimal.Decimal) (*models.Item, error)
}

type FinalizerParams struct {
	Store   Store
	Tx      txRunner
	Stock   stockRecorder
	Outbox  outbox.Emitter
	Metrics *metrics.ReplenishmentMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

// Finalizer closes a shopping trip: it records what was bought, restocks the
// purchased items and deactivates the list, all in one transaction.
type Finalizer struct {
	store   Store
	tx      txRunner
	stock   stockRecorder
	outbox  outbox.Emitter
	metrics *metrics.ReplenishmentMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewFinalizer(params FinalizerParams) (*Finalizer, error) {
	switch {
	case params.Store == nil:
		return nil, fmt.Errorf("shopping list store required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Stock == nil:
		return nil, fmt.Errorf("stock recorder required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Finalizer{
		store:   params.Store,
		tx:      params.Tx,
		stock:   params.Stock,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

type outcome struct {
	qty   decimal.Decimal
	price decimal.NullDecimal
}

// Finalize validates every purchased item before touching anything. Entries
// the request does not mention are reset to an empty purchase.
func (f *Finalizer) Finalize(ctx context.Context, userID, listID uuid.UUID, items []PurchasedItem) (ListDTO, error) {
	var (
		out       ListDTO
		total     decimal.Decimal
		purchased int
		skipped   int
	)
	err := f.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := f.store.WithTx(tx)
		list, err := store.LockByIDForUser(ctx, listID, userID)
		if err != nil {
			return mapErr(err, "shopping list not found")
		}
		if !list.Active {
			return pkgerrors.Rule(pkgerrors.CodeStateConflict, pkgerrors.ReasonListInactive, "shopping list is already finalized")
		}

		entries, err := store.ListEntries(ctx, list.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shopping list entries")
		}
		outcomes, err := validatePurchases(entries, items)
		if err != nil {
			return err
		}

		total = decimal.Zero
		for i := range entries {
			entry := &entries[i]
			result := outcomes[entry.ID]
			entry.PurchasedQuantity = result.qty
			entry.UnitaryPrice = result.price
			entry.Subtotal = types.Subtotal(result.qty, result.price)
			if entry.Item != nil {
				entry.ItemName = entry.Item.Name
			}
			if err := store.SaveEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save shopping list entry")
			}
			total = total.Add(entry.Subtotal)

			if !result.qty.IsPositive() || entry.ItemID == nil {
				skipped++
				continue
			}
			purchased++
			// the list is still active here, so re-evaluating the item never opens a new list
			if _, err := f.stock.RecordStockAdditionTx(ctx, tx, userID, *entry.ItemID, result.qty); err != nil {
				return err
			}
		}

		at := f.now().UTC()
		if err := store.Deactivate(ctx, list.ID, at); err != nil {
			return mapErr(err, "shopping list not found")
		}
		list.Active = false
		list.FinalizedAt = &at
		list.UpdatedAt = at
		total = types.RoundMoney(total)

		if f.outbox != nil {
			event := outbox.DomainEvent{
				EventType:     enums.EventShoppingListFinalized,
				AggregateType: enums.AggregateShoppingList,
				AggregateID:   list.ID,
				Actor:         &outbox.ActorRef{UserID: userID},
				OccurredAt:    at,
				Data: payloads.ShoppingListFinalizedEvent{
					ShoppingListID:   list.ID,
					UserID:           userID,
					TotalSpent:       total,
					PurchasedEntries: purchased,
					SkippedEntries:   skipped,
					FinalizedAt:      at,
				},
			}
			if err := f.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue finalized event")
			}
		}

		out = toListDTO(list, entries)
		return nil
	})
	if err != nil {
		return ListDTO{}, err
	}

	f.metrics.ListFinalized(total.InexactFloat64())
	if f.logg != nil {
		logCtx := f.logg.WithShoppingListID(f.logg.WithUserID(ctx, userID.String()), listID.String())
		logCtx = f.logg.WithFields(logCtx, map[string]any{
			"total":     total.String(),
			"purchased": purchased,
			"skipped":   skipped,
		})
		f.logg.Info(logCtx, "shopping list finalized")
	}
	return out, nil
}

// validatePurchases maps every entry to its final outcome or fails without
// side effects.
func validatePurchases(entries []models.ShoppingListItem, items []PurchasedItem) (map[uuid.UUID]outcome, error) {
	outcomes := make(map[uuid.UUID]outcome, len(entries))
	for _, entry := range entries {
		outcomes[entry.ID] = outcome{qty: decimal.Zero}
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := outcomes[item.EntryID]; !ok {
			return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidItemReference,
				fmt.Sprintf("entry %s does not belong to this shopping list", item.EntryID))
		}
		if _, dup := seen[item.EntryID]; dup {
			return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidItemReference,
				fmt.Sprintf("entry %s is listed more than once", item.EntryID))
		}
		seen[item.EntryID] = struct{}{}

		if item.PurchasedQuantity.IsNegative() {
			return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidQuantity, "purchasedQuantity must be >= 0")
		}
		if item.UnitaryPrice != nil && item.UnitaryPrice.IsNegative() {
			return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPrice, "unitaryPrice must be >= 0")
		}
		qty := types.RoundQuantity(item.PurchasedQuantity)
		if qty.IsPositive() && item.UnitaryPrice == nil {
			return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonPriceRequired, "unitaryPrice is required when purchasedQuantity > 0")
		}

		result := outcome{qty: qty}
		if item.UnitaryPrice != nil {
			result.price = decimal.NewNullDecimal(types.RoundMoney(*item.UnitaryPrice))
		}
		outcomes[item.EntryID] = result
	}
	return outcomes, nil
}
