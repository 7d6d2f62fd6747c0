package categories

import (
	"context"

	"github.com/angelmondragon/smartlist-backend/internal/repo"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, category *models.Category) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	ExistsByName(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	Rename(ctx context.Context, id, userID uuid.UUID, name string) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
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

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

func (r *Repository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.DB(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) ExistsByName(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.DB(ctx).Model(&models.Category{}).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Rename(ctx context.Context, id, userID uuid.UUID, name string) error {
	res := r.DB(ctx).
		Model(&models.Category{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete detaches the category from its items before removing it.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Model(&models.Item{}).
		Where("category_id = ? AND user_id = ?", id, userID).
		Update("category_id", nil).Error; err != nil {
		return err
	}
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
