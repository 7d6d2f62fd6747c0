package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/smartlist-backend/internal/categories"
	"github.com/angelmondragon/smartlist-backend/internal/consumption"
	"github.com/angelmondragon/smartlist-backend/internal/users"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemService covers item registration and editing. Every write re-evaluates
// the item through the coordinator inside the same transaction.
type ItemService interface {
	Register(ctx context.Context, userID uuid.UUID, req RegisterItemRequest) (ItemDTO, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (ItemDTO, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	Get(ctx context.Context, userID, itemID uuid.UUID) (ItemDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (ItemPageDTO, error)
	AddStock(ctx context.Context, userID, itemID uuid.UUID, added decimal.Decimal) (ItemDTO, error)
}

type ItemServiceParams struct {
	Items       ItemStore
	Users       users.Store
	Categories  categories.Store
	Coordinator Coordinator
	Tx          txRunner
	Logger      *logger.Logger
	Now         func() time.Time
}

type itemService struct {
	items       ItemStore
	users       users.Store
	categories  categories.Store
	coordinator Coordinator
	tx          txRunner
	logg        *logger.Logger
	now         func() time.Time
}

func NewItemService(params ItemServiceParams) (ItemService, error) {
	switch {
	case params.Items == nil:
		return nil, fmt.Errorf("item store required")
	case params.Users == nil:
		return nil, fmt.Errorf("user store required")
	case params.Categories == nil:
		return nil, fmt.Errorf("category store required")
	case params.Coordinator == nil:
		return nil, fmt.Errorf("coordinator required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &itemService{
		items:       params.Items,
		users:       params.Users,
		categories:  params.Categories,
		coordinator: params.Coordinator,
		tx:          params.Tx,
		logg:        params.Logger,
		now:         now,
	}, nil
}

func (s *itemService) Register(ctx context.Context, userID uuid.UUID, req RegisterItemRequest) (ItemDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := nonNegative(req.Quantity, "quantity"); err != nil {
		return ItemDTO{}, err
	}
	if err := nonNegative(req.Price, "price"); err != nil {
		return ItemDTO{}, err
	}
	unit, err := enums.ParseUnitOfMeasure(req.UnitOfMeasure)
	if err != nil {
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit of measure")
	}
	rate, err := rateFromPair(req.AvgConsumptionValue, req.AvgConsumptionUnit)
	if err != nil {
		return ItemDTO{}, err
	}
	if rate.Value.LessThan(minConsumptionValue) {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "avgConsumptionValue must be >= 0.001")
	}
	if req.CriticalQuantityDaysOverride != nil && *req.CriticalQuantityDaysOverride < 0 {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "criticalQuantityDaysOverride must be >= 0")
	}

	today := Today(s.now())
	item := &models.Item{
		UserID:                       userID,
		CategoryID:                   req.CategoryID,
		Name:                         name,
		Quantity:                     types.RoundQuantity(req.Quantity),
		UnitOfMeasure:                unit,
		Price:                        types.RoundMoney(req.Price),
		LastStockUpdate:              &today,
		CriticalQuantityDaysOverride: req.CriticalQuantityDaysOverride,
	}
	applyRate(item, rate)

	var out ItemDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).FindByID(ctx, userID)
		if err != nil {
			return mapLookupErr(err, "user not found", "load user")
		}
		itemRepo := s.items.WithTx(tx)
		if err := s.ensureUniqueName(ctx, itemRepo, userID, name, uuid.Nil); err != nil {
			return err
		}
		if err := s.ensureCategory(ctx, tx, userID, item.CategoryID); err != nil {
			return err
		}
		if err := itemRepo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		assessment, err := s.coordinator.ProcessItem(ctx, tx, user, item)
		if err != nil {
			return err
		}
		out = toItemDTO(item, assessment)
		return nil
	})
	if err != nil {
		return ItemDTO{}, err
	}
	s.logInfo(ctx, item.ID, "item registered")
	return out, nil
}

func (s *itemService) Update(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (ItemDTO, error) {
	if err := optionalNonNegative(req.Quantity, "quantity"); err != nil {
		return ItemDTO{}, err
	}
	if err := optionalNonNegative(req.Price, "price"); err != nil {
		return ItemDTO{}, err
	}
	if (req.AvgConsumptionValue == nil) != (req.AvgConsumptionUnit == nil) {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "avgConsumptionValue and avgConsumptionUnit must be provided together")
	}
	if v := req.CriticalQuantityDaysOverride.Value; v != nil && *v < 0 {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "criticalQuantityDaysOverride must be >= 0")
	}

	var out ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		item, err := itemRepo.LockByIDForUser(ctx, itemID, userID)
		if err != nil {
			return mapLookupErr(err, "item not found", "load item")
		}
		user, err := s.users.WithTx(tx).FindByID(ctx, userID)
		if err != nil {
			return mapLookupErr(err, "user not found", "load user")
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
			}
			if name != item.Name {
				if err := s.ensureUniqueName(ctx, itemRepo, userID, name, item.ID); err != nil {
					return err
				}
				item.Name = name
			}
		}
		if req.Quantity != nil {
			qty := types.RoundQuantity(*req.Quantity)
			if !qty.Equal(item.Quantity) {
				today := Today(s.now())
				item.Quantity = qty
				item.LastStockUpdate = &today
			}
		}
		if req.UnitOfMeasure != nil {
			unit, err := enums.ParseUnitOfMeasure(*req.UnitOfMeasure)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit of measure")
			}
			item.UnitOfMeasure = unit
		}
		if req.Price != nil {
			item.Price = types.RoundMoney(*req.Price)
		}
		if req.AvgConsumptionValue != nil {
			rate, err := rateFromPair(req.AvgConsumptionValue, req.AvgConsumptionUnit)
			if err != nil {
				return err
			}
			if !rate.Value.Equal(item.AvgConsumptionValue) || rate.Unit != item.AvgConsumptionUnit {
				applyRate(item, rate)
			}
		}
		if req.CriticalQuantityDaysOverride.Set {
			item.CriticalQuantityDaysOverride = req.CriticalQuantityDaysOverride.Value
		}
		if req.CategoryID.Set {
			if err := s.ensureCategory(ctx, tx, userID, req.CategoryID.Value); err != nil {
				return err
			}
			item.CategoryID = req.CategoryID.Value
		}

		if err := itemRepo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save item")
		}
		assessment, err := s.coordinator.ProcessItem(ctx, tx, user, item)
		if err != nil {
			return err
		}
		out = toItemDTO(item, assessment)
		return nil
	})
	if err != nil {
		return ItemDTO{}, err
	}
	s.logInfo(ctx, itemID, "item updated")
	return out, nil
}

// Delete removes the item and its active list entry. Finalized lists keep a
// detached copy of the entry.
func (s *itemService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		if _, err := itemRepo.LockByIDForUser(ctx, itemID, userID); err != nil {
			return mapLookupErr(err, "item not found", "load item")
		}
		if err := itemRepo.Delete(ctx, itemID, userID); err != nil {
			return mapLookupErr(err, "item not found", "delete item")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, itemID, "item deleted")
	return nil
}

func (s *itemService) Get(ctx context.Context, userID, itemID uuid.UUID) (ItemDTO, error) {
	item, err := s.items.FindByIDForUser(ctx, itemID, userID)
	if err != nil {
		return ItemDTO{}, mapLookupErr(err, "item not found", "load item")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ItemDTO{}, mapLookupErr(err, "user not found", "load user")
	}
	return toItemDTO(item, Assess(item, user, s.now())), nil
}

func (s *itemService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (ItemPageDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ItemPageDTO{}, mapLookupErr(err, "user not found", "load user")
	}
	rows, next, err := s.items.ListPage(ctx, userID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return ItemPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list items")
		}
		return ItemPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	now := s.now()
	page := ItemPageDTO{Items: make([]ItemDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Items = append(page.Items, toItemDTO(&rows[i], Assess(&rows[i], user, now)))
	}
	return page, nil
}

// AddStock records a manual restock and returns the refreshed item.
func (s *itemService) AddStock(ctx context.Context, userID, itemID uuid.UUID, added decimal.Decimal) (ItemDTO, error) {
	item, err := s.coordinator.RecordStockAddition(ctx, userID, itemID, added)
	if err != nil {
		return ItemDTO{}, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ItemDTO{}, mapLookupErr(err, "user not found", "load user")
	}
	return toItemDTO(item, Assess(item, user, s.now())), nil
}

func (s *itemService) ensureUniqueName(ctx context.Context, repo ItemStore, userID uuid.UUID, name string, exclude uuid.UUID) error {
	exists, err := repo.ExistsByName(ctx, userID, name, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item name")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "item already registered")
	}
	return nil
}

func (s *itemService) ensureCategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.WithTx(tx).FindByIDForUser(ctx, *categoryID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

func (s *itemService) logInfo(ctx context.Context, itemID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithItemID(ctx, itemID.String()), msg)
}

// minConsumptionValue is the smallest rate a new item may be registered with.
var minConsumptionValue = decimal.New(1, -3)

// rateFromPair is the single place the derived per-day rate is computed.
func rateFromPair(value *decimal.Decimal, unit *string) (consumption.Rate, error) {
	if value == nil || unit == nil {
		return consumption.Rate{}, pkgerrors.New(pkgerrors.CodeValidation, "avgConsumptionValue and avgConsumptionUnit must be provided together")
	}
	parsed, err := enums.ParseConsumptionUnit(*unit)
	if err != nil {
		return consumption.Rate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consumption unit")
	}
	rate, err := consumption.NewRate(types.RoundQuantity(*value), parsed)
	if err != nil {
		return consumption.Rate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consumption value")
	}
	return rate, nil
}

func applyRate(item *models.Item, rate consumption.Rate) {
	item.AvgConsumptionValue = rate.Value
	item.AvgConsumptionUnit = rate.Unit
	item.AvgConsumptionPerDay = rate.PerDay
}

func nonNegative(v decimal.Decimal, field string) error {
	if v.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be >= 0")
	}
	return nil
}

func optionalNonNegative(v *decimal.Decimal, field string) error {
	if v == nil {
		return nil
	}
	return nonNegative(*v, field)
}
