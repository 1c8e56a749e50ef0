package items

import (
	"strings"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
)

// SearchField names an item text column that search may match against.
type SearchField string

const (
	FieldName        SearchField = "name"
	FieldInformation SearchField = "information"
)

func (f SearchField) column() string {
	switch f {
	case FieldInformation:
		return "information"
	default:
		return "name"
	}
}

func (f SearchField) valueOf(item models.Item) string {
	switch f {
	case FieldInformation:
		if item.Information == nil {
			return ""
		}
		return *item.Information
	default:
		return item.Name
	}
}

// ParseSearchFields reads a comma separated field list. Empty input selects
// the name field only; unknown or repeated names are rejected or collapsed.
func ParseSearchFields(raw string) ([]SearchField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []SearchField{FieldName}, nil
	}

	seen := map[SearchField]bool{}
	fields := []SearchField{}
	for _, part := range strings.Split(raw, ",") {
		field := SearchField(strings.ToLower(strings.TrimSpace(part)))
		if field == "" {
			continue
		}
		if field != FieldName && field != FieldInformation {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported search field").
				WithDetails(map[string]string{"fields": "must be a subset of name, information"})
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return []SearchField{FieldName}, nil
	}
	return fields, nil
}
