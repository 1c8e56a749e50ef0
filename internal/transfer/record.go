package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/types"
)

var (
	errPositionRequired  = errors.New("position is required")
	errContainerRequired = errors.New("containerId is required")
)

// optional records whether a JSON key was present and whether it was null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type embeddedCategory struct {
	ID *int64 `json:"id"`
}

// record is one untrusted import entry. Keys it does not know, such as the
// timestamps of an export, are ignored.
type record struct {
	ID          *int64                   `json:"id"`
	Name        optional[string]         `json:"name"`
	Value       optional[float64]        `json:"value"`
	CategoryID  optional[int64]          `json:"categoryId"`
	Category    *embeddedCategory        `json:"category"`
	Size        optional[string]         `json:"size"`
	Quantity    optional[int]            `json:"quantity"`
	Information optional[string]         `json:"information"`
	Photo       optional[string]         `json:"photo"`
	ContainerID optional[int64]          `json:"containerId"`
	Position    optional[types.Position] `json:"position"`
}

func decodeRecord(raw json.RawMessage) (record, error) {
	var rec record
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return rec, errors.New("record must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return rec, fmt.Errorf("malformed record: %w", err)
	}
	return rec, nil
}

// normalize folds an embedded category object into categoryId when the
// record carries no usable categoryId of its own, then drops the object.
func (r *record) normalize() {
	if r.CategoryID.Value == nil && r.Category != nil && r.Category.ID != nil {
		id := *r.Category.ID
		r.CategoryID = optional[int64]{Set: true, Value: &id}
	}
	r.Category = nil
}

// cell returns the container and position the record points at, if both are given.
func (r record) cell() (int64, types.Position, bool) {
	if r.ContainerID.Value == nil || r.Position.Value == nil {
		return 0, types.Position{}, false
	}
	return *r.ContainerID.Value, *r.Position.Value, true
}

// label names the record in failure messages.
func (r record) label(index int) string {
	if r.Name.Value != nil {
		if name := strings.TrimSpace(*r.Name.Value); name != "" {
			return name
		}
	}
	if r.Position.Value != nil {
		return fmt.Sprintf("Item at position %s", *r.Position.Value)
	}
	return fmt.Sprintf("Item #%d", index+1)
}

// applyTo copies every supplied field except id onto item.
func (r record) applyTo(item *models.Item) error {
	if r.Name.Set {
		item.Name = ""
		if r.Name.Value != nil {
			item.Name = strings.TrimSpace(*r.Name.Value)
		}
	}
	if r.Value.Set {
		item.Value = items.ToDecimal(r.Value.Value)
	}
	if r.CategoryID.Set {
		item.CategoryID = r.CategoryID.Value
	}
	if r.Size.Set {
		item.Size = r.Size.Value
	}
	if r.Quantity.Set {
		item.Quantity = 1
		if r.Quantity.Value != nil {
			item.Quantity = *r.Quantity.Value
		}
	}
	if r.Information.Set {
		item.Information = r.Information.Value
	}
	if r.Photo.Set {
		item.Photo = r.Photo.Value
	}
	if r.ContainerID.Set {
		if r.ContainerID.Value == nil {
			return errContainerRequired
		}
		item.ContainerID = *r.ContainerID.Value
	}
	if r.Position.Set {
		if r.Position.Value == nil {
			return errPositionRequired
		}
		item.Position = *r.Position.Value
	}
	if item.Quantity < 0 {
		return errors.New("quantity must be at least 0")
	}
	item.Category = nil
	return nil
}

// newItem builds a fresh item from the record, applying create defaults.
func (r record) newItem() (*models.Item, error) {
	if r.ContainerID.Value == nil {
		return nil, errContainerRequired
	}
	if r.Position.Value == nil {
		return nil, errPositionRequired
	}
	item := &models.Item{Quantity: 1}
	if err := r.applyTo(item); err != nil {
		return nil, err
	}
	return item, nil
}
