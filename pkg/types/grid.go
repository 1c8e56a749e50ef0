package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyGrid      = errors.New("gridConfig must contain at least one row")
	ErrNoCellRows     = errors.New("gridConfig must contain at least one non-divider row")
	ErrRowShape       = errors.New("row must declare columns or isDivider")
	ErrNonPositiveRow = errors.New("row columns must be a positive integer")
)

type rowKind uint8

const (
	rowCells rowKind = iota
	rowDivider
)

// Row is one grid row: either a run of addressable cells or a visual divider.
type Row struct {
	kind    rowKind
	columns int
}

func CellsRow(columns int) Row {
	return Row{kind: rowCells, columns: columns}
}

func DividerRow() Row {
	return Row{kind: rowDivider}
}

func (r Row) IsDivider() bool {
	return r.kind == rowDivider
}

// Columns returns the number of addressable cells; dividers have none.
func (r Row) Columns() int {
	if r.IsDivider() {
		return 0
	}
	return r.columns
}

func (r Row) validate() error {
	if r.IsDivider() {
		return nil
	}
	if r.columns <= 0 {
		return ErrNonPositiveRow
	}
	return nil
}

type rowWire struct {
	Columns   *int `json:"columns,omitempty"`
	IsDivider bool `json:"isDivider,omitempty"`
}

// MarshalJSON emits exactly one of {"columns":n} or {"isDivider":true}.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.IsDivider() {
		return json.Marshal(rowWire{IsDivider: true})
	}
	cols := r.columns
	return json.Marshal(rowWire{Columns: &cols})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrRowShape
	}
	var wire rowWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.IsDivider:
		*r = DividerRow()
	case wire.Columns == nil:
		return ErrRowShape
	case *wire.Columns <= 0:
		return ErrNonPositiveRow
	default:
		*r = CellsRow(*wire.Columns)
	}
	return nil
}

// GridConfig is the ordered row layout of a container.
type GridConfig struct {
	Rows []Row `json:"rows"`
}

// Validate checks that the layout has at least one addressable row and that
// every cell row declares a positive column count.
func (g GridConfig) Validate() error {
	if len(g.Rows) == 0 {
		return ErrEmptyGrid
	}
	for i, row := range g.Rows {
		if err := row.validate(); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}
	if g.CellRows() == 0 {
		return ErrNoCellRows
	}
	return nil
}

// CellRows counts the addressable (non-divider) rows.
func (g GridConfig) CellRows() int {
	n := 0
	for _, row := range g.Rows {
		if !row.IsDivider() {
			n++
		}
	}
	return n
}

// Capacity is the total number of addressable cells.
func (g GridConfig) Capacity() int {
	total := 0
	for _, row := range g.Rows {
		total += row.Columns()
	}
	return total
}

// RenderIndex maps a logical row (dividers skipped) to its index in Rows.
func (g GridConfig) RenderIndex(logicalRow int) (int, bool) {
	if logicalRow < 0 {
		return 0, false
	}
	seen := 0
	for i, row := range g.Rows {
		if row.IsDivider() {
			continue
		}
		if seen == logicalRow {
			return i, true
		}
		seen++
	}
	return 0, false
}

// ColumnsAt returns the column count of a logical row.
func (g GridConfig) ColumnsAt(logicalRow int) (int, bool) {
	idx, ok := g.RenderIndex(logicalRow)
	if !ok {
		return 0, false
	}
	return g.Rows[idx].Columns(), true
}

// Contains reports whether pos addresses a cell of the grid.
func (g GridConfig) Contains(pos Position) bool {
	cols, ok := g.ColumnsAt(pos.Row)
	if !ok {
		return false
	}
	return pos.Column >= 0 && pos.Column < cols
}
