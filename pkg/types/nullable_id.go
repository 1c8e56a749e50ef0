package types

import (
	"bytes"
	"encoding/json"
)

// NullableID tracks whether an integer id field was explicitly present in JSON,
// so a PATCH can tell "omitted" from "set to null".
type NullableID struct {
	Valid bool
	Value *int64
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed int64
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Clone returns a copy of the NullableID.
func (n NullableID) Clone() NullableID {
	if n.Value == nil {
		return NullableID{Valid: n.Valid}
	}
	copy := *n.Value
	return NullableID{Valid: n.Valid, Value: &copy}
}
