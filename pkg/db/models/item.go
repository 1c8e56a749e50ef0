package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gridstock/pkg/types"
)

// Item sits in one cell of its container. Size is matched against
// SizeOption.Name by convention only.
type Item struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string              `gorm:"column:name;not null"`
	Value       decimal.NullDecimal `gorm:"column:value;type:numeric(12,2)"`
	CategoryID  *int64              `gorm:"column:category_id;index:items_category_id_idx"`
	Category    *Category           `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Size        *string             `gorm:"column:size"`
	Quantity    int                 `gorm:"column:quantity;not null"`
	Information *string             `gorm:"column:information"`
	Photo       *string             `gorm:"column:photo"`
	ContainerID int64               `gorm:"column:container_id;not null;index:items_container_id_idx"`
	Position    types.Position      `gorm:"embedded;embeddedPrefix:position_"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
