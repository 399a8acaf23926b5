package todo

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON object member that remembers whether it was present.
// An explicit null sets both Set and Null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a present field holding JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// that appear in the document, which is what makes Set meaningful.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Null = true
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}
