package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/angelmondragon/gridstock/pkg/types"
)

// Container is a physical storage unit laid out as a grid of rows.
type Container struct {
	ID          int64                                `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string                               `gorm:"column:name;not null"`
	Description *string                              `gorm:"column:description"`
	GridConfig  datatypes.JSONType[types.GridConfig] `gorm:"column:grid_config;not null"`
	Items       []Item                               `gorm:"foreignKey:ContainerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                            `gorm:"column:updated_at;autoUpdateTime"`
}

// Grid returns the decoded row layout.
func (c Container) Grid() types.GridConfig {
	return c.GridConfig.Data()
}
