package ir

import (
	"encoding/json"
	"fmt"
)

// IR is the root document.
type IR struct {
	Version string `json:"version"`
	Module  Module `json:"module"`
}

// Module is a named unit of control logic.
type Module struct {
	Name        string        `json:"name"`
	Context     *string       `json:"context,omitempty"`
	Intent      *Intent       `json:"intent,omitempty"`
	Constraints *Constraints  `json:"constraints,omitempty"`
	Signals     []SignalDecl  `json:"signals,omitzero"`
	Coils       []CoilDecl    `json:"coils,omitzero"`
	Rungs       []RungDecl    `json:"rungs,omitzero"`
	Blocks      []BlockDecl   `json:"blocks,omitzero"`
	Networks    []NetworkDecl `json:"networks,omitzero"`
}

// Intent describes what the module is for.
type Intent struct {
	Goal *string `json:"goal,omitempty"`
}

// Constraints bound how the module may handle data, quality and cost.
type Constraints struct {
	DataPrivacy *DataPrivacy `json:"data_privacy,omitempty"`
	Quality     *Quality     `json:"quality,omitempty"`
	Cost        *Cost        `json:"cost,omitempty"`
}

// DataPrivacy constrains jurisdiction and PII handling.
type DataPrivacy struct {
	Jurisdiction *string `json:"jurisdiction,omitempty"`
	PIIHandling  *string `json:"pii_handling,omitempty"`
}

// Quality sets minimum precision/recall.
type Quality struct {
	MinPrecision *float64 `json:"min_precision,omitempty"`
	MinRecall    *float64 `json:"min_recall,omitempty"`
}

// Cost sets a spending ceiling. The amount is a free-form string ("0.05 USD").
type Cost struct {
	MaxCostPerSubmission *string `json:"max_cost_per_submission,omitempty"`
}

// SignalDecl declares a named input signal.
type SignalDecl struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitzero"`
	Type       *string  `json:"type,omitempty"`
}

// CoilDecl declares a named output coil.
type CoilDecl struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitzero"`
	Latching   *bool    `json:"latching,omitempty"`
	Critical   *bool    `json:"critical,omitempty"`
}

// RungDecl is a guarded sequence of actions.
type RungDecl struct {
	Name    string    `json:"name"`
	Guard   GuardExpr `json:"guard"`
	Actions []Action  `json:"actions"`
}

// UnmarshalJSON decodes the rung, resolving the guard variant.
func (r *RungDecl) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string          `json:"name"`
		Guard   json.RawMessage `json:"guard"`
		Actions []Action        `json:"actions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Guard) == 0 {
		return fmt.Errorf("rung %q: missing guard", raw.Name)
	}
	guard, err := UnmarshalGuard(raw.Guard)
	if err != nil {
		return fmt.Errorf("rung %q: guard: %w", raw.Name, err)
	}
	if raw.Actions == nil {
		return fmt.Errorf("rung %q: missing actions", raw.Name)
	}
	*r = RungDecl{Name: raw.Name, Guard: guard, Actions: raw.Actions}
	return nil
}

// ActionType is the kind of effect an action has on its coil.
type ActionType string

// Action types.
const (
	ActionEnergise   ActionType = "energise"
	ActionDeEnergise ActionType = "de_energise"
)

// Action energises or de-energises a coil.
type Action struct {
	Type      ActionType `json:"type"`
	Coil      string     `json:"coil"`
	Arguments Exprs      `json:"arguments,omitzero"`
}

// BlockDecl declares a function block with typed ports.
type BlockDecl struct {
	Name    string     `json:"name"`
	Inputs  []PortDecl `json:"inputs,omitzero"`
	Outputs []PortDecl `json:"outputs,omitzero"`
	Effect  *string    `json:"effect,omitempty"`
}

// PortDecl is a typed block port.
type PortDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NetworkDecl wires blocks together and exposes named outputs.
type NetworkDecl struct {
	Name    string   `json:"name"`
	Wires   []Wire   `json:"wires,omitzero"`
	Outputs []Output `json:"outputs,omitzero"`
}

// Wire connects a source point to a target point.
type Wire struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Output exposes an internal point of a network under a name.
type Output struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// CoilNames returns the set of declared coil names.
func (m *Module) CoilNames() map[string]bool {
	names := make(map[string]bool, len(m.Coils))
	for _, c := range m.Coils {
		names[c.Name] = true
	}
	return names
}

// SignalNames returns the set of declared signal names.
func (m *Module) SignalNames() map[string]bool {
	names := make(map[string]bool, len(m.Signals))
	for _, s := range m.Signals {
		names[s.Name] = true
	}
	return names
}
