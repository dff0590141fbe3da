package ir

import (
	"encoding/json"
	"fmt"
)

// GuardKind is the wire discriminant of a guard expression.
type GuardKind string

// Guard kinds.
const (
	GuardContact GuardKind = "contact"
	GuardAnd     GuardKind = "and"
	GuardOr      GuardKind = "or"
	GuardNot     GuardKind = "not"
)

// GuardExpr is a sealed interface for rung conditions.
// Only *Contact, *And, *Or and *Not implement it. Composites own their
// children: a guard is a tree with no shared nodes.
type GuardExpr interface {
	Kind() GuardKind
	guardExpr() // Sealed
}

// ContactType selects normally-open or normally-closed contacts.
type ContactType string

// Contact types.
const (
	ContactNO ContactType = "NO"
	ContactNC ContactType = "NC"
)

// Contact references a declared signal.
type Contact struct {
	Name        string      `json:"name"`
	ContactType ContactType `json:"contact_type"`
	Arguments   Exprs       `json:"arguments,omitzero"`
}

// And is satisfied when both sides are.
type And struct {
	Left  GuardExpr `json:"left"`
	Right GuardExpr `json:"right"`
}

// Or is satisfied when either side is.
type Or struct {
	Left  GuardExpr `json:"left"`
	Right GuardExpr `json:"right"`
}

// Not negates its operand.
type Not struct {
	Expr GuardExpr `json:"expr"`
}

func (*Contact) Kind() GuardKind { return GuardContact }
func (*And) Kind() GuardKind     { return GuardAnd }
func (*Or) Kind() GuardKind      { return GuardOr }
func (*Not) Kind() GuardKind     { return GuardNot }

func (*Contact) guardExpr() {}
func (*And) guardExpr()     {}
func (*Or) guardExpr()      {}
func (*Not) guardExpr()     {}

// MarshalJSON implements json.Marshaler, adding the discriminant.
func (c *Contact) MarshalJSON() ([]byte, error) {
	type contact Contact
	return json.Marshal(struct {
		Type GuardKind `json:"type"`
		contact
	}{GuardContact, contact(*c)})
}

// MarshalJSON implements json.Marshaler, adding the discriminant.
func (a *And) MarshalJSON() ([]byte, error) {
	return marshalBinary(GuardAnd, a.Left, a.Right)
}

// MarshalJSON implements json.Marshaler, adding the discriminant.
func (o *Or) MarshalJSON() ([]byte, error) {
	return marshalBinary(GuardOr, o.Left, o.Right)
}

// MarshalJSON implements json.Marshaler, adding the discriminant.
func (n *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type GuardKind `json:"type"`
		Expr GuardExpr `json:"expr"`
	}{GuardNot, n.Expr})
}

func marshalBinary(kind GuardKind, left, right GuardExpr) ([]byte, error) {
	return json.Marshal(struct {
		Type  GuardKind `json:"type"`
		Left  GuardExpr `json:"left"`
		Right GuardExpr `json:"right"`
	}{kind, left, right})
}

// UnmarshalGuard decodes a guard expression, dispatching on "type".
func UnmarshalGuard(data []byte) (GuardExpr, error) {
	var head struct {
		Type *GuardKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Type == nil {
		return nil, fmt.Errorf("missing guard type")
	}

	switch *head.Type {
	case GuardContact:
		var raw struct {
			Name        *string      `json:"name"`
			ContactType *ContactType `json:"contact_type"`
			Arguments   Exprs        `json:"arguments"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("contact: %w", err)
		}
		if raw.Name == nil {
			return nil, fmt.Errorf("contact: missing name")
		}
		if raw.ContactType == nil {
			return nil, fmt.Errorf("contact %q: missing contact_type", *raw.Name)
		}
		return &Contact{Name: *raw.Name, ContactType: *raw.ContactType, Arguments: raw.Arguments}, nil

	case GuardAnd, GuardOr:
		var raw struct {
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", *head.Type, err)
		}
		left, err := unmarshalOperand(*head.Type, "left", raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := unmarshalOperand(*head.Type, "right", raw.Right)
		if err != nil {
			return nil, err
		}
		if *head.Type == GuardAnd {
			return &And{Left: left, Right: right}, nil
		}
		return &Or{Left: left, Right: right}, nil

	case GuardNot:
		var raw struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		expr, err := unmarshalOperand(GuardNot, "expr", raw.Expr)
		if err != nil {
			return nil, err
		}
		return &Not{Expr: expr}, nil

	default:
		return nil, fmt.Errorf("unknown guard type %q", *head.Type)
	}
}

func unmarshalOperand(kind GuardKind, field string, data json.RawMessage) (GuardExpr, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: missing %s", kind, field)
	}
	g, err := UnmarshalGuard(data)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", kind, field, err)
	}
	return g, nil
}

// Walk visits g in depth-first, left-to-right order. Returning false from
// fn skips the children of the current node.
func Walk(g GuardExpr, fn func(GuardExpr) bool) {
	if g == nil || !fn(g) {
		return
	}
	switch node := g.(type) {
	case *Contact:
	case *And:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case *Or:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case *Not:
		Walk(node.Expr, fn)
	default:
		panic(fmt.Sprintf("ir: unhandled guard type %T", g))
	}
}

// Contacts returns every contact leaf of g, left to right.
func Contacts(g GuardExpr) []*Contact {
	var out []*Contact
	Walk(g, func(node GuardExpr) bool {
		if c, ok := node.(*Contact); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}
