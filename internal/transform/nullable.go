package transform

import (
	"bytes"
	"encoding/json"
)

// Nullable is a JSON field with three states: absent, null and a value.
//
// encoding/json only calls UnmarshalJSON when the key is present, so a zero
// Nullable means the client did not send the field at all. That is what lets
// PATCH tell "leave the group alone" apart from "group": null.
type Nullable[T any] struct {
	Set   bool // the key was present
	Valid bool // the value was not null
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns a pointer to the value, or nil when the field is null or
// absent.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Some returns a present, non-null Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present Nullable holding JSON null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}
