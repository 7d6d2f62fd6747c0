package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a JSON field was present and whether it was null.
// PATCH handlers use it to tell "leave unchanged" from "clear".
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// Clears reports whether the field was explicitly sent as null.
func (n Nullable[T]) Clears() bool {
	return n.Set && n.Value == nil
}
