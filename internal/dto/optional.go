package dto

import "encoding/json"

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true whenever the field appeared in the payload; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
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

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present, null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
