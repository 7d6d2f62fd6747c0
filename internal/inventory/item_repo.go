package inventory

import (
	"context"

	"github.com/angelmondragon/smartlist-backend/internal/repo"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemStore is the item persistence surface. Every lookup is scoped to the
// owning user so a foreign id behaves exactly like a missing one.
type ItemStore interface {
	WithTx(tx *gorm.DB) ItemStore
	Create(ctx context.Context, item *models.Item) error
	Save(ctx context.Context, item *models.Item) error
	FindByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.Item, error)
	LockByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Item, error)
	ListPage(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Item, string, error)
	ExistsByName(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	Delete(ctx context.Context, itemID, userID uuid.UUID) error
}

type ItemRepository struct {
	repo.Base
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{Base: repo.NewBase(db)}
}

func (r *ItemRepository) WithTx(tx *gorm.DB) ItemStore {
	return &ItemRepository{Base: r.Bind(tx)}
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).
		Model(item).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(item).Error
}

func (r *ItemRepository) FindByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.DB(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByIDForUser loads the item holding a row lock until the transaction ends.
func (r *ItemRepository) LockByIDForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ListPage returns one page of items, newest first, and the cursor of the next page.
func (r *ItemRepository) ListPage(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Item, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.DB(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var items []models.Item
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&items).Error; err != nil {
		return nil, "", err
	}

	page, next := pagination.Trim(items, params.Limit, func(row models.Item) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, next, nil
}

func (r *ItemRepository) ExistsByName(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.DB(ctx).Model(&models.Item{}).Where("user_id = ? AND name = ?", userID, name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the item. Its entry on the owner's active list goes with
// it; entries on finalized lists are detached and keep the item's name so
// past totals stay intact.
func (r *ItemRepository) Delete(ctx context.Context, itemID, userID uuid.UUID) error {
	db := r.DB(ctx)
	item, err := r.FindByIDForUser(ctx, itemID, userID)
	if err != nil {
		return err
	}

	active := db.Model(&models.ShoppingList{}).
		Select("id").
		Where("user_id = ? AND active = ?", userID, true)
	if err := db.Where("item_id = ? AND shopping_list_id IN (?)", itemID, active).
		Delete(&models.ShoppingListItem{}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.ShoppingListItem{}).
		Where("item_id = ?", itemID).
		Updates(map[string]any{"item_id": nil, "item_name": item.Name}).Error; err != nil {
		return err
	}

	res := db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
