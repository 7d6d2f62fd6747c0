package users

import (
	"context"

	"github.com/angelmondragon/smartlist-backend/internal/repo"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence surface consumed by the replenishment engine.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateCriticalQuantityDays(ctx context.Context, id uuid.UUID, days int) error
}

// Repository exposes user persistence operations.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) Store {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateCriticalQuantityDays(ctx context.Context, id uuid.UUID, days int) error {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("critical_quantity_days", days)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
