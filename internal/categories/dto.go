package categories

import (
	"time"

	"github.com/angelmondragon/gridstock/pkg/db/models"
)

type CategoryDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCategoryInput struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Color string  `json:"color" validate:"required,max=50"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
}

type UpdateCategoryInput struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Color *string `json:"color" validate:"omitempty,max=50"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
}

func FromModel(m models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        m.ID,
		Name:      m.Name,
		Color:     m.Color,
		Icon:      m.Icon,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModelPtr returns nil for items without a resolvable category.
func FromModelPtr(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	dto := FromModel(*m)
	return &dto
}

func FromModels(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
