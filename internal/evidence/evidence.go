package evidence

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Source identifies where an evidence value came from.
type Source string

// Evidence sources. Wire values are upper case.
const (
	SourceLLM    Source = "LLM"
	SourceOCR    Source = "OCR"
	SourceAPI    Source = "API"
	SourceUser   Source = "USER"
	SourceSensor Source = "SENSOR"
)

// ValidSources defines allowed evidence sources.
var ValidSources = map[Source]bool{
	SourceLLM:    true,
	SourceOCR:    true,
	SourceAPI:    true,
	SourceUser:   true,
	SourceSensor: true,
}

// UnmarshalJSON rejects unknown sources.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !ValidSources[Source(raw)] {
		return fmt.Errorf("unknown evidence source %q", raw)
	}
	*s = Source(raw)
	return nil
}

// Type classifies the kind of claim an evidence value makes.
type Type string

// Evidence types.
const (
	TypeNumericEstimate  Type = "numeric_estimate"
	TypeCategorical      Type = "categorical"
	TypeTextExtraction   Type = "text_extraction"
	TypeBooleanAssertion Type = "boolean_assertion"
)

// ValidTypes defines allowed evidence types.
var ValidTypes = map[Type]bool{
	TypeNumericEstimate:  true,
	TypeCategorical:      true,
	TypeTextExtraction:   true,
	TypeBooleanAssertion: true,
}

// UnmarshalJSON rejects unknown evidence types.
func (t *Type) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !ValidTypes[Type(raw)] {
		return fmt.Errorf("unknown evidence type %q", raw)
	}
	*t = Type(raw)
	return nil
}

// Evidence wraps a value of type T with confidence, source and metadata.
//
// Construct with New or WithConfidence. Predicates use value receivers and
// never mutate; Dispute is the only mutator.
type Evidence[T any] struct {
	Value        T        `json:"value"`
	Confidence   float64  `json:"confidence"`
	Source       Source   `json:"source"`
	EvidenceType Type     `json:"evidence_type"`
	Disputed     bool     `json:"disputed"`
	Verifiable   bool     `json:"verifiable"`
	PermittedUse []string `json:"permitted_use"`
}

// Common instantiations.
type (
	Bool    = Evidence[bool]
	Numeric = Evidence[float64]
	Text    = Evidence[string]
)

// New creates evidence with full confidence and no use restrictions.
func New[T any](value T, source Source, typ Type) Evidence[T] {
	return WithConfidence(value, source, typ, 1.0)
}

// WithConfidence creates evidence with the given confidence clamped into [0, 1].
func WithConfidence[T any](value T, source Source, typ Type, confidence float64) Evidence[T] {
	return Evidence[T]{
		Value:        value,
		Confidence:   Clamp(confidence),
		Source:       source,
		EvidenceType: typ,
		Verifiable:   true,
		PermittedUse: []string{},
	}
}

// Clamp saturates c into [0, 1]. NaN becomes 0.
func Clamp(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// MeetsThreshold reports whether confidence >= threshold and the evidence
// is not disputed.
func (e Evidence[T]) MeetsThreshold(threshold float64) bool {
	return e.Confidence >= threshold && !e.Disputed
}

// IsAdmissibleFor reports whether the evidence may be used for useCase.
// Matching is exact.
func (e Evidence[T]) IsAdmissibleFor(useCase string) bool {
	return len(e.PermittedUse) == 0 || slices.Contains(e.PermittedUse, useCase)
}

// Permit returns a copy with uses added to the permitted use cases, in
// order. Unrestricted evidence becomes restricted to exactly uses; already
// restricted evidence gains them.
func (e Evidence[T]) Permit(uses ...string) Evidence[T] {
	e.PermittedUse = append(slices.Clone(e.PermittedUse), uses...)
	return e
}

// Unverifiable returns a copy marked as not independently verifiable.
func (e Evidence[T]) Unverifiable() Evidence[T] {
	e.Verifiable = false
	return e
}

// Dispute marks the evidence as disputed. Called by reconciliation.
func (e *Evidence[T]) Dispute() {
	e.Disputed = true
}

// UnmarshalJSON decodes evidence applying the wire defaults
// (confidence 1.0, verifiable true) and clamping confidence.
func (e *Evidence[T]) UnmarshalJSON(data []byte) error {
	type wire struct {
		Value        *T       `json:"value"`
		Confidence   *float64 `json:"confidence"`
		Source       *Source  `json:"source"`
		EvidenceType *Type    `json:"evidence_type"`
		Disputed     bool     `json:"disputed"`
		Verifiable   *bool    `json:"verifiable"`
		PermittedUse []string `json:"permitted_use"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Value == nil {
		return fmt.Errorf("evidence: missing value")
	}
	if w.Source == nil {
		return fmt.Errorf("evidence: missing source")
	}
	if w.EvidenceType == nil {
		return fmt.Errorf("evidence: missing evidence_type")
	}

	out := WithConfidence(*w.Value, *w.Source, *w.EvidenceType, 1.0)
	if w.Confidence != nil {
		out.Confidence = Clamp(*w.Confidence)
	}
	if w.Verifiable != nil {
		out.Verifiable = *w.Verifiable
	}
	out.Disputed = w.Disputed
	if w.PermittedUse != nil {
		out.PermittedUse = w.PermittedUse
	}
	*e = out
	return nil
}
