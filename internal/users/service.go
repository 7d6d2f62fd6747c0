package users

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Refresher re-evaluates a user's inventory after their horizon changes.
type Refresher interface {
	RefreshAll(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (SettingsDTO, error)
	UpdateCriticalQuantityDays(ctx context.Context, userID uuid.UUID, days int) (SettingsDTO, error)
}

type ServiceParams struct {
	Repo      Store
	Refresher Refresher
	Logger    *logger.Logger
}

type service struct {
	repo      Store
	refresher Refresher
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repo required")
	}
	return &service{repo: params.Repo, refresher: params.Refresher, logg: params.Logger}, nil
}

func (s *service) GetSettings(ctx context.Context, userID uuid.UUID) (SettingsDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return SettingsDTO{}, mapErr(err)
	}
	return FromModel(user), nil
}

// UpdateCriticalQuantityDays changes the default horizon and re-evaluates the
// user's items, since a wider horizon can make items critical.
func (s *service) UpdateCriticalQuantityDays(ctx context.Context, userID uuid.UUID, days int) (SettingsDTO, error) {
	if days < 0 {
		return SettingsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "criticalQuantityDays must be >= 0")
	}
	if err := s.repo.UpdateCriticalQuantityDays(ctx, userID, days); err != nil {
		return SettingsDTO{}, mapErr(err)
	}
	if s.refresher != nil {
		if err := s.refresher.RefreshAll(ctx, userID); err != nil {
			return SettingsDTO{}, err
		}
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "critical_quantity_days", days), "critical quantity days updated")
	}
	return s.GetSettings(ctx, userID)
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}
