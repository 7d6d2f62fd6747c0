package users

import (
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/google/uuid"
)

// SettingsDTO is the consumer-facing view of replenishment settings.
type SettingsDTO struct {
	UserID               uuid.UUID `json:"userId"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	CriticalQuantityDays int       `json:"criticalQuantityDays"`
}

func FromModel(user *models.User) SettingsDTO {
	return SettingsDTO{
		UserID:               user.ID,
		Email:                user.Email,
		Name:                 user.Name,
		CriticalQuantityDays: user.CriticalQuantityDays,
	}
}

// UpdateSettingsRequest is the PATCH body for settings.
type UpdateSettingsRequest struct {
	CriticalQuantityDays *int `json:"criticalQuantityDays" validate:"required,min=0,max=365"`
}
