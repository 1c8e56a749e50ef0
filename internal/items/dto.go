package items

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gridstock/internal/categories"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/types"
)

// ItemDTO is an item together with its resolved category, if any.
type ItemDTO struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Value       *float64                `json:"value,omitempty"`
	CategoryID  *int64                  `json:"categoryId"`
	Size        *string                 `json:"size,omitempty"`
	Quantity    int                     `json:"quantity"`
	Information *string                 `json:"information,omitempty"`
	Photo       *string                 `json:"photo,omitempty"`
	ContainerID int64                   `json:"containerId"`
	Position    types.Position          `json:"position"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	Category    *categories.CategoryDTO `json:"category"`
}

type SearchResultDTO struct {
	ItemDTO
	ContainerName string `json:"containerName"`
}

type CreateItemInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Value       *float64       `json:"value"`
	CategoryID  *int64         `json:"categoryId" validate:"omitempty,gt=0"`
	Size        *string        `json:"size" validate:"omitempty,max=50"`
	Quantity    *int           `json:"quantity" validate:"omitempty,gte=0"`
	Information *string        `json:"information" validate:"omitempty,max=5000"`
	Photo       *string        `json:"photo" validate:"omitempty,max=2048"`
	ContainerID int64          `json:"containerId" validate:"required,gt=0"`
	Position    types.Position `json:"position"`
}

// UpdateItemInput is a partial update. CategoryID distinguishes an omitted
// field from an explicit null that clears the category.
type UpdateItemInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Value       *float64         `json:"value"`
	CategoryID  types.NullableID `json:"categoryId"`
	Size        *string          `json:"size" validate:"omitempty,max=50"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	Information *string          `json:"information" validate:"omitempty,max=5000"`
	Photo       *string          `json:"photo" validate:"omitempty,max=2048"`
	ContainerID *int64           `json:"containerId" validate:"omitempty,gt=0"`
	Position    *types.Position  `json:"position"`
}

type MoveItemInput struct {
	Position    types.Position `json:"position"`
	ContainerID *int64         `json:"containerId" validate:"omitempty,gt=0"`
}

type GridCell struct {
	Column int      `json:"column"`
	Item   *ItemDTO `json:"item,omitempty"`
}

// GridRow is one rendered row; dividers carry no row number or cells.
type GridRow struct {
	IsDivider bool       `json:"isDivider,omitempty"`
	Row       *int       `json:"row,omitempty"`
	Cells     []GridCell `json:"cells,omitempty"`
}

// GridView renders a container for display. Unplaced lists items that the
// grid cannot show, either outside the layout or sharing a cell.
type GridView struct {
	ContainerID   int64     `json:"containerId"`
	ContainerName string    `json:"containerName"`
	Rows          []GridRow `json:"rows"`
	Unplaced      []ItemDTO `json:"unplaced,omitempty"`
}

func FromModel(m models.Item) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		Name:        m.Name,
		Value:       FromDecimal(m.Value),
		CategoryID:  m.CategoryID,
		Size:        m.Size,
		Quantity:    m.Quantity,
		Information: m.Information,
		Photo:       m.Photo,
		ContainerID: m.ContainerID,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Category:    categories.FromModelPtr(m.Category),
	}
}

func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

// ToDecimal stores values with cent precision.
func ToDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v).Round(2))
}

func FromDecimal(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
