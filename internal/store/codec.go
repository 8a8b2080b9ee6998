package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// RegisterType records a concrete type for gob encoding/decoding of
// interface-typed values (e.g. types.Type's concrete variants) before
// Encode/Decode are used on them. Safe to call more than once for the
// same type.
func RegisterType(v any) {
	gob.Register(v)
}

// Encode gob-encodes v into a []byte suitable for Entry.Value. Concrete
// types nested behind an interface field must have been passed to
// RegisterType first.
func Encode[V any](v V) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode gob-decodes b into a V, the inverse of Encode.
func Decode[V any](b []byte) (V, error) {
	var v V
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		var zero V
		return zero, fmt.Errorf("store: decode: %w", err)
	}
	return v, nil
}
