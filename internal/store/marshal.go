package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/charta/internal/ir"
)

// marshalViolations converts violations to canonical JSON TEXT for storage.
// A nil slice is stored as [] so the column is never NULL.
func marshalViolations(vs []Violation) (string, error) {
	if vs == nil {
		vs = []Violation{}
	}
	data, err := ir.MarshalCanonical(vs)
	if err != nil {
		return "", fmt.Errorf("marshal violations: %w", err)
	}
	return string(data), nil
}

// unmarshalViolations parses the violations column. Returns an empty
// slice (not nil) for [].
func unmarshalViolations(s string) ([]Violation, error) {
	vs := []Violation{}
	if err := json.Unmarshal([]byte(s), &vs); err != nil {
		return nil, fmt.Errorf("unmarshal violations: %w", err)
	}
	return vs, nil
}
