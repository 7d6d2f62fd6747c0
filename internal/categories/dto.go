package categories

import (
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/google/uuid"
)

type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

type UpsertCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}
