package sizeoptions

import "github.com/angelmondragon/gridstock/pkg/db/models"

type SizeOptionDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	SortOrder int    `json:"sortOrder"`
}

type CreateSizeOptionInput struct {
	Name      string `json:"name" validate:"required,max=50"`
	Label     string `json:"label" validate:"required,max=100"`
	SortOrder *int   `json:"sortOrder"`
}

type UpdateSizeOptionInput struct {
	Name      *string `json:"name" validate:"omitempty,max=50"`
	Label     *string `json:"label" validate:"omitempty,max=100"`
	SortOrder *int    `json:"sortOrder"`
}

// Defaults are the size options seeded into a fresh database.
var Defaults = []CreateSizeOptionInput{
	{Name: "xs", Label: "Extra Small", SortOrder: intPtr(0)},
	{Name: "sm", Label: "Small", SortOrder: intPtr(1)},
	{Name: "md", Label: "Medium", SortOrder: intPtr(2)},
	{Name: "lg", Label: "Large", SortOrder: intPtr(3)},
	{Name: "xl", Label: "Extra Large", SortOrder: intPtr(4)},
}

func FromModel(m models.SizeOption) SizeOptionDTO {
	return SizeOptionDTO{ID: m.ID, Name: m.Name, Label: m.Label, SortOrder: m.SortOrder}
}

func FromModels(rows []models.SizeOption) []SizeOptionDTO {
	out := make([]SizeOptionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
