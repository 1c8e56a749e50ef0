package types

import (
	"errors"
	"fmt"
)

var ErrNegativePosition = errors.New("position row and column must be non-negative")

// Position addresses a cell by logical row (dividers excluded) and column.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (p Position) Validate() error {
	if p.Row < 0 || p.Column < 0 {
		return ErrNegativePosition
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Column)
}
