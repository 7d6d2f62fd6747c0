package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a user's item categories.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (CategoryDTO, error)
	Get(ctx context.Context, userID, id uuid.UUID) (CategoryDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]CategoryDTO, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) (CategoryDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ServiceParams struct {
	Repo   Store
	Tx     txRunner
	Logger *logger.Logger
}

type service struct {
	repo Store
	tx   txRunner
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("category repo required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: params.Repo, tx: params.Tx, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, name string) (CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.ensureUniqueName(ctx, s.repo, userID, name, uuid.Nil); err != nil {
		return CategoryDTO{}, err
	}
	category := &models.Category{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "category_id", category.ID.String()), "category created")
	}
	return FromModel(*category), nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (CategoryDTO, error) {
	category, err := s.repo.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return CategoryDTO{}, mapErr(err)
	}
	return FromModel(*category), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Rename(ctx context.Context, userID, id uuid.UUID, name string) (CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	var out CategoryDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByIDForUser(ctx, id, userID); err != nil {
			return mapErr(err)
		}
		if err := s.ensureUniqueName(ctx, repo, userID, name, id); err != nil {
			return err
		}
		if err := repo.Rename(ctx, id, userID, name); err != nil {
			return mapErr(err)
		}
		category, err := repo.FindByIDForUser(ctx, id, userID)
		if err != nil {
			return mapErr(err)
		}
		out = FromModel(*category)
		return nil
	})
	return out, err
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id, userID); err != nil {
			return mapErr(err)
		}
		return nil
	})
}

func (s *service) ensureUniqueName(ctx context.Context, repo Store, userID uuid.UUID, name string, exclude uuid.UUID) error {
	exists, err := repo.ExistsByName(ctx, userID, name, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "category name already in use")
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "category storage")
}
