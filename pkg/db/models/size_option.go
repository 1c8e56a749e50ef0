package models

// SizeOption is a named size token; listings order by SortOrder.
type SizeOption struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;not null;uniqueIndex:size_options_name_key"`
	Label     string `gorm:"column:label;not null"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0;index:size_options_sort_order_idx"`
}
