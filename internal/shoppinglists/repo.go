package shoppinglists

import (
	"context"
	"time"

	"github.com/angelmondragon/smartlist-backend/internal/repo"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists lists and their entries. Lookups are scoped to the owner.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.ShoppingList, error)
	CreateActiveIfAbsent(ctx context.Context, userID uuid.UUID) (bool, error)
	FindByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error)
	LockByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error)
	ShareByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ShoppingList, string, error)
	ListEntries(ctx context.Context, listID uuid.UUID) ([]models.ShoppingListItem, error)
	InsertEntryIfAbsent(ctx context.Context, entry *models.ShoppingListItem) (bool, error)
	FindEntryForUser(ctx context.Context, entryID, userID uuid.UUID) (*models.ShoppingListItem, error)
	SaveEntry(ctx context.Context, entry *models.ShoppingListItem) error
	DeleteEntry(ctx context.Context, entryID uuid.UUID) error
	Deactivate(ctx context.Context, listID uuid.UUID, at time.Time) error
	DeleteFinalizedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) Store {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.DB(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateActiveIfAbsent inserts an active list unless the owner already has
// one. The partial unique index decides the race; the loser inserts nothing.
func (r *Repository) CreateActiveIfAbsent(ctx context.Context, userID uuid.UUID) (bool, error) {
	list := &models.ShoppingList{UserID: userID, Active: true}
	res := r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(list)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.DB(ctx).
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// LockByIDForUser takes the list row exclusively. Finalize holds it until
// the list is closed.
func (r *Repository) LockByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	return r.lockList(ctx, "UPDATE", listID, userID)
}

// ShareByIDForUser blocks while a finalize holds the row and then reads the
// committed state. Entry writers share it with each other.
func (r *Repository) ShareByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	return r.lockList(ctx, "SHARE", listID, userID)
}

func (r *Repository) lockList(ctx context.Context, strength string, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: strength}).
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByUser pages through the owner's lists, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ShoppingList, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.DB(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var lists []models.ShoppingList
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&lists).Error; err != nil {
		return nil, "", err
	}

	page, next := pagination.Trim(lists, params.Limit, func(row models.ShoppingList) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, next, nil
}

// ListEntries returns a list's entries with their items, oldest first.
func (r *Repository) ListEntries(ctx context.Context, listID uuid.UUID) ([]models.ShoppingListItem, error) {
	var entries []models.ShoppingListItem
	err := r.DB(ctx).
		Preload("Item").
		Where("shopping_list_id = ?", listID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// InsertEntryIfAbsent relies on ux_shopping_list_items_list_item so a second
// insert of the same item is a no-op.
func (r *Repository) InsertEntryIfAbsent(ctx context.Context, entry *models.ShoppingListItem) (bool, error) {
	res := r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Item").
		Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindEntryForUser(ctx context.Context, entryID, userID uuid.UUID) (*models.ShoppingListItem, error) {
	var entry models.ShoppingListItem
	err := r.DB(ctx).
		Joins("JOIN shopping_lists ON shopping_lists.id = shopping_list_items.shopping_list_id").
		Where("shopping_list_items.id = ? AND shopping_lists.user_id = ?", entryID, userID).
		Preload("Item").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) SaveEntry(ctx context.Context, entry *models.ShoppingListItem) error {
	return r.DB(ctx).
		Model(entry).
		Select("item_name", "purchased_quantity", "unitary_price", "subtotal", "updated_at").
		Updates(entry).Error
}

func (r *Repository) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", entryID).Delete(&models.ShoppingListItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate closes an active list. Zero rows means it was already closed.
func (r *Repository) Deactivate(ctx context.Context, listID uuid.UUID, at time.Time) error {
	res := r.DB(ctx).
		Model(&models.ShoppingList{}).
		Where("id = ? AND active = ?", listID, true).
		Updates(map[string]any{"active": false, "finalized_at": at, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteFinalizedBefore removes inactive lists closed before cutoff along
// with their entries. Active lists are never selected.
func (r *Repository) DeleteFinalizedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.DB(ctx)
	stale := db.Model(&models.ShoppingList{}).
		Select("id").
		Where("active = ? AND finalized_at IS NOT NULL AND finalized_at < ?", false, cutoff)

	if err := db.Where("shopping_list_id IN (?)", stale).Delete(&models.ShoppingListItem{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("active = ? AND finalized_at IS NOT NULL AND finalized_at < ?", false, cutoff).
		Delete(&models.ShoppingList{})
	return res.RowsAffected, res.Error
}
