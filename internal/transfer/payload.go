package transfer

import (
	"bytes"
	"encoding/json"
	"io"

	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
)

// MaxPayloadBytes caps the size of an import document.
const MaxPayloadBytes = 32 << 20

// ParsePayload reads an import document and returns its raw item records.
// Any other top-level keys, such as those of an export snapshot, are ignored.
func ParsePayload(r io.Reader) ([]json.RawMessage, error) {
	var doc struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}

	trimmed := bytes.TrimSpace(doc.Items)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"items": "must be an array"})
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(map[string]string{"items": "must be an array"})
	}
	return records, nil
}
