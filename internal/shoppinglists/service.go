// Package shoppinglists manages each user's active shopping list and the
// finalization of a shopping trip.
package shoppinglists

import (
	"context"
	"fmt"

	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Refresher re-evaluates a user's inventory so the active list is current
// before it is read.
type Refresher interface {
	RefreshAll(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	GetActive(ctx context.Context, userID uuid.UUID) (ListDTO, error)
	GetByID(ctx context.Context, userID, listID uuid.UUID) (ListDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (PageDTO, error)
	UpdateItem(ctx context.Context, userID, entryID uuid.UUID, req UpdateEntryRequest) (EntryDTO, error)
	DeleteItem(ctx context.Context, userID, entryID uuid.UUID) error
	Finalize(ctx context.Context, userID, listID uuid.UUID, req FinalizeRequest) (ListDTO, error)
}

type ServiceParams struct {
	Registry  *Registry
	Finalizer *Finalizer
	Refresher Refresher
}

type service struct {
	registry  *Registry
	finalizer *Finalizer
	refresher Refresher
}

func NewService(params ServiceParams) (Service, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("registry required")
	}
	if params.Finalizer == nil {
		return nil, fmt.Errorf("finalizer required")
	}
	return &service{registry: params.Registry, finalizer: params.Finalizer, refresher: params.Refresher}, nil
}

// GetActive refreshes the user's inventory first, which may create the list.
func (s *service) GetActive(ctx context.Context, userID uuid.UUID) (ListDTO, error) {
	if s.refresher != nil {
		if err := s.refresher.RefreshAll(ctx, userID); err != nil {
			return ListDTO{}, err
		}
	}
	return s.registry.GetActive(ctx, userID)
}

func (s *service) GetByID(ctx context.Context, userID, listID uuid.UUID) (ListDTO, error) {
	return s.registry.GetByID(ctx, userID, listID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (PageDTO, error) {
	return s.registry.List(ctx, userID, params)
}

func (s *service) UpdateItem(ctx context.Context, userID, entryID uuid.UUID, req UpdateEntryRequest) (EntryDTO, error) {
	return s.registry.UpdateItem(ctx, userID, entryID, req)
}

func (s *service) DeleteItem(ctx context.Context, userID, entryID uuid.UUID) error {
	return s.registry.DeleteItem(ctx, userID, entryID)
}

func (s *service) Finalize(ctx context.Context, userID, listID uuid.UUID, req FinalizeRequest) (ListDTO, error) {
	return s.finalizer.Finalize(ctx, userID, listID, req.Items)
}
