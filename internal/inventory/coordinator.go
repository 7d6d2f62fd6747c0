package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/smartlist-backend/internal/users"
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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Enqueued reports what happened when an item was offered to the active list.
type Enqueued struct {
	ShoppingListID uuid.UUID
	EntryID        uuid.UUID
	Inserted       bool
	ListCreated    bool
}

// ListEnqueuer inserts an item into the owner's active list if it is not there yet.
type ListEnqueuer interface {
	AddIfAbsentTx(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (Enqueued, error)
}

// Coordinator re-evaluates items and reacts to stock changes.
type Coordinator interface {
	ProcessItem(ctx context.Context, tx *gorm.DB, user *models.User, item *models.Item) (Assessment, error)
	RefreshAll(ctx context.Context, userID uuid.UUID) error
	RecordStockAddition(ctx context.Context, userID, itemID uuid.UUID, added decimal.Decimal) (*models.Item, error)
	RecordStockAdditionTx(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID, added decimal.Decimal) (*models.Item, error)
}

type CoordinatorParams struct {
	Items   ItemStore
	Users   users.Store
	Lists   ListEnqueuer
	Tx      txRunner
	Outbox  outbox.Emitter
	Metrics *metrics.ReplenishmentMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type coordinator struct {
	items   ItemStore
	users   users.Store
	lists   ListEnqueuer
	tx      txRunner
	outbox  outbox.Emitter
	metrics *metrics.ReplenishmentMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewCoordinator(params CoordinatorParams) (Coordinator, error) {
	if params.Items == nil {
		return nil, fmt.Errorf("item store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Lists == nil {
		return nil, fmt.Errorf("list enqueuer required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &coordinator{
		items:   params.Items,
		users:   params.Users,
		lists:   params.Lists,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// ProcessItem evaluates item and queues it on the owner's active list when
// critical. Queuing an item that is already listed is a no-op.
func (c *coordinator) ProcessItem(ctx context.Context, tx *gorm.DB, user *models.User, item *models.Item) (Assessment, error) {
	if user == nil || item == nil {
		return Assessment{}, pkgerrors.New(pkgerrors.CodeInternal, "user and item are required")
	}
	if item.UserID != user.ID {
		return Assessment{}, pkgerrors.Rule(pkgerrors.CodeNotFound, pkgerrors.ReasonForeignOwnership, "item not found")
	}

	assessment := Assess(item, user, c.now())
	if !assessment.Critical {
		return assessment, nil
	}

	enq, err := c.lists.AddIfAbsentTx(ctx, tx, user.ID, item.ID)
	if err != nil {
		return assessment, err
	}
	if !enq.Inserted {
		return assessment, nil
	}
	assessment.Enqueued = true
	c.metrics.ItemFlaggedCritical()

	if c.outbox != nil && tx != nil {
		event := outbox.DomainEvent{
			EventType:     enums.EventItemBecameCritical,
			AggregateType: enums.AggregateItem,
			AggregateID:   item.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Data: payloads.ItemBecameCriticalEvent{
				ItemID:         item.ID,
				UserID:         user.ID,
				ShoppingListID: enq.ShoppingListID,
				ItemName:       item.Name,
				VirtualStock:   assessment.VirtualStock,
				Threshold:      assessment.Threshold,
			},
		}
		if err := c.outbox.Emit(ctx, tx, event); err != nil {
			return assessment, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue critical item event")
		}
	}

	if c.logg != nil {
		logCtx := c.logg.WithItemID(c.logg.WithShoppingListID(ctx, enq.ShoppingListID.String()), item.ID.String())
		logCtx = c.logg.WithField(logCtx, "virtual_stock", assessment.VirtualStock.String())
		c.logg.Info(logCtx, "item queued for replenishment")
	}
	return assessment, nil
}

// RefreshAll re-evaluates every item owned by userID in one transaction.
func (c *coordinator) RefreshAll(ctx context.Context, userID uuid.UUID) error {
	return c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := c.users.WithTx(tx).FindByID(ctx, userID)
		if err != nil {
			return mapLookupErr(err, "user not found", "load user")
		}
		items, err := c.items.WithTx(tx).ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
		}
		for i := range items {
			if _, err := c.ProcessItem(ctx, tx, user, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *coordinator) RecordStockAddition(ctx context.Context, userID, itemID uuid.UUID, added decimal.Decimal) (*models.Item, error) {
	var out *models.Item
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := c.RecordStockAdditionTx(ctx, tx, userID, itemID, added)
		out = item
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordStockAdditionTx adds stock to an owned item, restarts its depletion
// clock and re-evaluates it.
func (c *coordinator) RecordStockAdditionTx(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID, added decimal.Decimal) (*models.Item, error) {
	if !added.IsPositive() {
		return nil, pkgerrors.Rule(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidQuantity, "added quantity must be greater than zero")
	}

	itemRepo := c.items.WithTx(tx)
	item, err := itemRepo.LockByIDForUser(ctx, itemID, userID)
	if err != nil {
		return nil, mapLookupErr(err, "item not found", "load item")
	}

	today := Today(c.now())
	item.Quantity = types.RoundQuantity(item.Quantity.Add(added))
	item.LastStockUpdate = &today
	if err := itemRepo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save item")
	}

	user, err := c.users.WithTx(tx).FindByID(ctx, userID)
	if err != nil {
		return nil, mapLookupErr(err, "user not found", "load user")
	}
	if _, err := c.ProcessItem(ctx, tx, user, item); err != nil {
		return nil, err
	}

	c.metrics.StockAdded()
	if c.logg != nil {
		logCtx := c.logg.WithItemID(ctx, item.ID.String())
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"added":    added.String(),
			"quantity": item.Quantity.String(),
		})
		c.logg.Info(logCtx, "stock added")
	}
	return item, nil
}

func mapLookupErr(err error, notFound, dependency string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFound)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, dependency)
}
