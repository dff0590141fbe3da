// Package semantic checks the invariants of a deserialized IR that a
// structural schema cannot express: name uniqueness and references
// between declarations.
package semantic

import (
	"fmt"
	"strings"

	"github.com/roach88/charta/internal/ir"
)

// Semantic violation codes (E200-E299)
const (
	ErrEmptyModuleName = "E201" // module name is required
	ErrDuplicateSignal = "E202" // signal names must be distinct
	ErrDuplicateCoil   = "E203" // coil names must be distinct
	ErrUndefinedCoil   = "E204" // action targets an undeclared coil

	// Strict rules, enabled with Strict()
	ErrUndefinedSignal  = "E205" // contact names an undeclared signal
	ErrDuplicateRung    = "E206" // rung names must be distinct
	ErrDuplicateBlock   = "E207" // block names must be distinct
	ErrDuplicateNetwork = "E208" // network names must be distinct
	ErrUndefinedBlock   = "E209" // block.port endpoint names an undeclared block

	// ErrVersionConstraint is reported by the pipeline when the IR version
	// does not satisfy a configured constraint.
	ErrVersionConstraint = "E210"
)

// Violation is a single semantic failure. Rung and Name identify the
// offending entities so callers do not need to re-read the document.
type Violation struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Rung    string `json:"rung,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Message)
}

type options struct {
	strict bool
}

// Option configures validation.
type Option func(*options)

// Strict enables the rules beyond the core set: contact signals must be
// declared, rung/block/network names must be distinct and block.port
// endpoints must name declared blocks.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Validate checks the IR and returns every violation found, in check order:
// module name, signals, coils, coil references, then the strict rules.
// The IR is not modified.
func Validate(doc *ir.IR, opts ...Option) []Violation {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &doc.Module
	var errs []Violation

	// E201: module name is required
	if m.Name == "" {
		errs = append(errs, Violation{
			Code:    ErrEmptyModuleName,
			Field:   "module.name",
			Message: "module name cannot be empty",
		})
	}

	// E202: duplicate signal name
	if i, name, ok := firstDuplicate(len(m.Signals), func(i int) string { return m.Signals[i].Name }); ok {
		errs = append(errs, Violation{
			Code:    ErrDuplicateSignal,
			Field:   fmt.Sprintf("module.signals[%d].name", i),
			Message: fmt.Sprintf("duplicate signal name: %q", name),
			Name:    name,
		})
	}

	// E203: duplicate coil name
	if i, name, ok := firstDuplicate(len(m.Coils), func(i int) string { return m.Coils[i].Name }); ok {
		errs = append(errs, Violation{
			Code:    ErrDuplicateCoil,
			Field:   fmt.Sprintf("module.coils[%d].name", i),
			Message: fmt.Sprintf("duplicate coil name: %q", name),
			Name:    name,
		})
	}

	// E204: every action targets a declared coil
	coils := m.CoilNames()
	for i, rung := range m.Rungs {
		for j, action := range rung.Actions {
			if coils[action.Coil] {
				continue
			}
			errs = append(errs, Violation{
				Code:    ErrUndefinedCoil,
				Field:   fmt.Sprintf("module.rungs[%d].actions[%d].coil", i, j),
				Message: fmt.Sprintf("rung %q references undefined coil: %q", rung.Name, action.Coil),
				Rung:    rung.Name,
				Name:    action.Coil,
			})
		}
	}

	if o.strict {
		errs = append(errs, validateStrict(m)...)
	}

	return errs
}

// First returns the first violation Validate would report, or nil.
func First(doc *ir.IR, opts ...Option) *Violation {
	errs := Validate(doc, opts...)
	if len(errs) == 0 {
		return nil
	}
	return &errs[0]
}

func validateStrict(m *ir.Module) []Violation {
	var errs []Violation

	// E205: contacts name declared signals
	signals := m.SignalNames()
	for i, rung := range m.Rungs {
		for _, c := range ir.Contacts(rung.Guard) {
			if signals[c.Name] {
				continue
			}
			errs = append(errs, Violation{
				Code:    ErrUndefinedSignal,
				Field:   fmt.Sprintf("module.rungs[%d].guard", i),
				Message: fmt.Sprintf("rung %q guard references undefined signal: %q", rung.Name, c.Name),
				Rung:    rung.Name,
				Name:    c.Name,
			})
		}
	}

	// E206-E208: rung, block and network names are distinct
	if i, name, ok := firstDuplicate(len(m.Rungs), func(i int) string { return m.Rungs[i].Name }); ok {
		errs = append(errs, Violation{
			Code:    ErrDuplicateRung,
			Field:   fmt.Sprintf("module.rungs[%d].name", i),
			Message: fmt.Sprintf("duplicate rung name: %q", name),
			Rung:    name,
			Name:    name,
		})
	}
	if i, name, ok := firstDuplicate(len(m.Blocks), func(i int) string { return m.Blocks[i].Name }); ok {
		errs = append(errs, Violation{
			Code:    ErrDuplicateBlock,
			Field:   fmt.Sprintf("module.blocks[%d].name", i),
			Message: fmt.Sprintf("duplicate block name: %q", name),
			Name:    name,
		})
	}
	if i, name, ok := firstDuplicate(len(m.Networks), func(i int) string { return m.Networks[i].Name }); ok {
		errs = append(errs, Violation{
			Code:    ErrDuplicateNetwork,
			Field:   fmt.Sprintf("module.networks[%d].name", i),
			Message: fmt.Sprintf("duplicate network name: %q", name),
			Name:    name,
		})
	}

	// E209: block.port endpoints name declared blocks
	blocks := make(map[string]bool, len(m.Blocks))
	for _, b := range m.Blocks {
		blocks[b.Name] = true
	}
	for i, n := range m.Networks {
		for j, w := range n.Wires {
			errs = appendEndpoint(errs, blocks, w.Source, fmt.Sprintf("module.networks[%d].wires[%d].source", i, j), n.Name)
			errs = appendEndpoint(errs, blocks, w.Target, fmt.Sprintf("module.networks[%d].wires[%d].target", i, j), n.Name)
		}
		for j, out := range n.Outputs {
			errs = appendEndpoint(errs, blocks, out.Source, fmt.Sprintf("module.networks[%d].outputs[%d].source", i, j), n.Name)
		}
	}

	return errs
}

// appendEndpoint checks a "block.port" endpoint. Endpoints without a dot
// are network-level names and are not checked.
func appendEndpoint(errs []Violation, blocks map[string]bool, endpoint, field, network string) []Violation {
	block, _, ok := strings.Cut(endpoint, ".")
	if !ok || blocks[block] {
		return errs
	}
	return append(errs, Violation{
		Code:    ErrUndefinedBlock,
		Field:   field,
		Message: fmt.Sprintf("network %q endpoint %q references undefined block: %q", network, endpoint, block),
		Name:    block,
	})
}

// firstDuplicate returns the index and name of the first element whose
// name was already seen, in declaration order.
func firstDuplicate(n int, name func(int) string) (int, string, bool) {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		s := name(i)
		if seen[s] {
			return i, s, true
		}
		seen[s] = true
	}
	return 0, "", false
}
