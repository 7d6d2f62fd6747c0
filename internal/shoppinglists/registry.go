package shoppinglists

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/smartlist-backend/internal/inventory"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const enqueueAttempts = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type RegistryParams struct {
	Store   Store
	Tx      txRunner
	Metrics *metrics.ReplenishmentMetrics
	Logger  *logger.Logger
}

// Registry owns the active list of every user: it creates it lazily, fills it
// with critical items and serves edits to its entries.
type Registry struct {
	store   Store
	tx      txRunner
	metrics *metrics.ReplenishmentMetrics
	logg    *logger.Logger
}

var _ inventory.ListEnqueuer = (*Registry)(nil)

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("shopping list store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Registry{store: params.Store, tx: params.Tx, metrics: params.Metrics, logg: params.Logger}, nil
}

// GetOrCreateActiveTx returns the owner's active list, creating it if needed.
// Concurrent callers converge on a single row; the one that did not insert
// reads the winner's list.
func (r *Registry) GetOrCreateActiveTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.ShoppingList, bool, error) {
	store := r.store.WithTx(tx)
	list, err := store.FindActiveByUser(ctx, userID)
	if err == nil {
		return list, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active shopping list")
	}

	created, err := store.CreateActiveIfAbsent(ctx, userID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shopping list")
	}
	list, err = store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.Rule(pkgerrors.CodeConflict, pkgerrors.ReasonActiveListContention, "active shopping list changed concurrently")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload active shopping list")
	}
	if created {
		r.metrics.ListCreated()
		if r.logg != nil {
			r.logg.Info(r.logg.WithShoppingListID(r.logg.WithUserID(ctx, userID.String()), list.ID.String()), "shopping list created")
		}
	}
	return list, created, nil
}

// AddIfAbsentTx queues itemID on the owner's active list with an empty
// purchase. An item already on the list is left untouched. A list finalized
// between lookup and lock is skipped and a fresh one is opened.
func (r *Registry) AddIfAbsentTx(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (inventory.Enqueued, error) {
	store := r.store.WithTx(tx)
	for attempt := 0; attempt < enqueueAttempts; attempt++ {
		list, created, err := r.GetOrCreateActiveTx(ctx, tx, userID)
		if err != nil {
			return inventory.Enqueued{}, err
		}
		locked, err := store.ShareByIDForUser(ctx, list.ID, userID)
		if err != nil {
			return inventory.Enqueued{}, mapErr(err, "shopping list not found")
		}
		if !locked.Active {
			continue
		}

		entry := &models.ShoppingListItem{
			ShoppingListID:    list.ID,
			ItemID:            &itemID,
			PurchasedQuantity: decimal.Zero,
			Subtotal:          decimal.Zero,
		}
		inserted, err := store.InsertEntryIfAbsent(ctx, entry)
		if err != nil {
			return inventory.Enqueued{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue shopping list entry")
		}
		out := inventory.Enqueued{ShoppingListID: list.ID, Inserted: inserted, ListCreated: created}
		if inserted {
			out.EntryID = entry.ID
		}
		return out, nil
	}
	return inventory.Enqueued{}, pkgerrors.Rule(pkgerrors.CodeConflict, pkgerrors.ReasonActiveListContention, "active shopping list changed concurrently")
}

// UpdateItem applies a partial edit to an entry of an active list. The
// subtotal is recomputed only when quantity or price actually changed.
func (r *Registry) UpdateItem(ctx context.Context, userID, entryID uuid.UUID, req UpdateEntryRequest) (EntryDTO, error) {
	if req.PurchasedQuantity != nil && req.PurchasedQuantity.IsNegative() {
		return EntryDTO{}, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidQuantity, "purchasedQuantity must be >= 0")
	}
	if v := req.UnitaryPrice.Value; v != nil && v.IsNegative() {
		return EntryDTO{}, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPrice, "unitaryPrice must be >= 0")
	}

	var out EntryDTO
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := r.store.WithTx(tx)
		entry, err := r.loadEditableEntry(ctx, store, userID, entryID)
		if err != nil {
			return err
		}

		changed := false
		if req.PurchasedQuantity != nil {
			qty := types.RoundQuantity(*req.PurchasedQuantity)
			if !qty.Equal(entry.PurchasedQuantity) {
				entry.PurchasedQuantity = qty
				changed = true
			}
		}
		if req.UnitaryPrice.Set {
			price := decimal.NullDecimal{}
			if !req.UnitaryPrice.Clears() {
				price = decimal.NewNullDecimal(types.RoundMoney(*req.UnitaryPrice.Value))
			}
			if !samePrice(price, entry.UnitaryPrice) {
				entry.UnitaryPrice = price
				changed = true
			}
		}
		if changed {
			entry.Subtotal = types.Subtotal(entry.PurchasedQuantity, entry.UnitaryPrice)
			if err := store.SaveEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save shopping list entry")
			}
		}
		out = toEntryDTO(*entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}
	return out, nil
}

// DeleteItem removes an entry from an active list permanently.
func (r *Registry) DeleteItem(ctx context.Context, userID, entryID uuid.UUID) error {
	return r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := r.store.WithTx(tx)
		if _, err := r.loadEditableEntry(ctx, store, userID, entryID); err != nil {
			return err
		}
		if err := store.DeleteEntry(ctx, entryID); err != nil {
			return mapErr(err, "shopping list entry not found")
		}
		if r.logg != nil {
			r.logg.Info(r.logg.WithField(ctx, "entry_id", entryID.String()), "shopping list entry removed")
		}
		return nil
	})
}

// GetActive reads the owner's active list with its entries.
func (r *Registry) GetActive(ctx context.Context, userID uuid.UUID) (ListDTO, error) {
	list, err := r.store.FindActiveByUser(ctx, userID)
	if err != nil {
		return ListDTO{}, mapErr(err, "no active shopping list")
	}
	return r.withEntries(ctx, r.store, list)
}

func (r *Registry) GetByID(ctx context.Context, userID, listID uuid.UUID) (ListDTO, error) {
	list, err := r.store.FindByIDForUser(ctx, listID, userID)
	if err != nil {
		return ListDTO{}, mapErr(err, "shopping list not found")
	}
	return r.withEntries(ctx, r.store, list)
}

func (r *Registry) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (PageDTO, error) {
	lists, next, err := r.store.ListByUser(ctx, userID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list shopping lists")
		}
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shopping lists")
	}
	page := PageDTO{Lists: make([]SummaryDTO, 0, len(lists)), NextCursor: next}
	for _, list := range lists {
		page.Lists = append(page.Lists, toSummaryDTO(list))
	}
	return page, nil
}

// loadEditableEntry checks the list under a share lock so an edit never
// lands on a list that a concurrent finalize just closed.
func (r *Registry) loadEditableEntry(ctx context.Context, store Store, userID, entryID uuid.UUID) (*models.ShoppingListItem, error) {
	entry, err := store.FindEntryForUser(ctx, entryID, userID)
	if err != nil {
		return nil, mapErr(err, "shopping list entry not found")
	}
	list, err := store.ShareByIDForUser(ctx, entry.ShoppingListID, userID)
	if err != nil {
		return nil, mapErr(err, "shopping list not found")
	}
	if !list.Active {
		return nil, pkgerrors.Rule(pkgerrors.CodeStateConflict, pkgerrors.ReasonListInactive, "shopping list is finalized")
	}
	// re-read after the lock; finalize may have rewritten the entry
	entry, err = store.FindEntryForUser(ctx, entryID, userID)
	if err != nil {
		return nil, mapErr(err, "shopping list entry not found")
	}
	return entry, nil
}

func (r *Registry) withEntries(ctx context.Context, store Store, list *models.ShoppingList) (ListDTO, error) {
	entries, err := store.ListEntries(ctx, list.ID)
	if err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shopping list entries")
	}
	return toListDTO(list, entries), nil
}

func samePrice(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func mapErr(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFound)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shopping list storage")
}
