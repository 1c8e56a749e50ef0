package containers

import (
	"time"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/types"
)

type ContainerDTO struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	GridConfig  types.GridConfig `json:"gridConfig"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type CreateContainerInput struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	GridConfig  types.GridConfig `json:"gridConfig"`
}

// UpdateContainerInput carries a partial update; nil fields keep their value
// and an empty description clears it.
type UpdateContainerInput struct {
	Name        *string           `json:"name" validate:"omitempty,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	GridConfig  *types.GridConfig `json:"gridConfig"`
}

func FromModel(m models.Container) ContainerDTO {
	return ContainerDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		GridConfig:  m.Grid(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromModels(rows []models.Container) []ContainerDTO {
	out := make([]ContainerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
