package items

import (
	"sort"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/types"
)

type cellKey struct {
	containerID int64
	row         int
	column      int
}

// PositionIndex is a lookup of cell occupants built from a snapshot of items.
// When several items share a cell the lowest id owns it and the rest are
// reported by Shadowed.
type PositionIndex struct {
	cells    map[cellKey]models.Item
	shadowed []models.Item
}

func NewPositionIndex(rows []models.Item) *PositionIndex {
	sorted := make([]models.Item, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &PositionIndex{cells: make(map[cellKey]models.Item, len(sorted))}
	for _, item := range sorted {
		key := keyFor(item.ContainerID, item.Position)
		if _, taken := idx.cells[key]; taken {
			idx.shadowed = append(idx.shadowed, item)
			continue
		}
		idx.cells[key] = item
	}
	return idx
}

func (p *PositionIndex) ItemAt(containerID int64, pos types.Position) (models.Item, bool) {
	item, ok := p.cells[keyFor(containerID, pos)]
	return item, ok
}

func (p *PositionIndex) Shadowed() []models.Item {
	return p.shadowed
}

func keyFor(containerID int64, pos types.Position) cellKey {
	return cellKey{containerID: containerID, row: pos.Row, column: pos.Column}
}

// renderGrid lays the container items over its rows.
func renderGrid(container models.Container, rows []models.Item) GridView {
	grid := container.Grid()
	idx := NewPositionIndex(rows)
	view := GridView{
		ContainerID:   container.ID,
		ContainerName: container.Name,
		Rows:          make([]GridRow, 0, len(grid.Rows)),
	}

	logical := 0
	for _, row := range grid.Rows {
		if row.IsDivider() {
			view.Rows = append(view.Rows, GridRow{IsDivider: true})
			continue
		}
		rowNum := logical
		cells := make([]GridCell, 0, row.Columns())
		for col := 0; col < row.Columns(); col++ {
			cell := GridCell{Column: col}
			if item, ok := idx.ItemAt(container.ID, types.Position{Row: rowNum, Column: col}); ok {
				dto := FromModel(item)
				cell.Item = &dto
			}
			cells = append(cells, cell)
		}
		view.Rows = append(view.Rows, GridRow{Row: &rowNum, Cells: cells})
		logical++
	}

	for _, item := range rows {
		if !grid.Contains(item.Position) {
			view.Unplaced = append(view.Unplaced, FromModel(item))
		}
	}
	for _, item := range idx.Shadowed() {
		if grid.Contains(item.Position) {
			view.Unplaced = append(view.Unplaced, FromModel(item))
		}
	}
	return view
}
