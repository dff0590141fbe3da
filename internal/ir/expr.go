package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Expr is a sealed interface for argument values.
// Only BoolLit, NumberLit, StringLit and Ident implement it.
type Expr interface {
	expr() // Sealed
}

// BoolLit is a boolean literal.
type BoolLit bool

// NumberLit is a numeric literal.
type NumberLit float64

// StringLit is a string literal.
type StringLit string

// Ident references a named value. It encodes as a plain JSON string, so a
// decoded document never contains Ident: strings resolve to StringLit first.
type Ident string

func (BoolLit) expr()   {}
func (NumberLit) expr() {}
func (StringLit) expr() {}
func (Ident) expr()     {}

// Exprs is an ordered argument list.
type Exprs []Expr

// UnmarshalJSON implements json.Unmarshaler for Exprs.
// An empty JSON array yields a non-nil empty slice.
func (xs *Exprs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*xs = nil
		return nil
	}

	out := make(Exprs, len(raw))
	for i, v := range raw {
		x, err := UnmarshalExpr(v)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = x
	}
	*xs = out
	return nil
}

// UnmarshalExpr decodes a single argument value.
// Resolution order is boolean, number, string; identifiers are never
// produced because every JSON string matches StringLit first.
func UnmarshalExpr(data []byte) (Expr, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch c := data[0]; {
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return BoolLit(b), nil

	case c == '-' || (c >= '0' && c <= '9'):
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return NumberLit(n), nil

	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return StringLit(s), nil

	default:
		return nil, fmt.Errorf("expression must be a string, number or boolean: %s", string(data))
	}
}
