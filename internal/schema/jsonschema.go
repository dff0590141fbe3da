package schema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resourceURL is the location every compiled JSON Schema is registered
// under. Relative $refs resolve against it.
const resourceURL = "https://charta.schemas.local/schema.json"

type jsonSchema struct {
	name     string
	compiled *jsonschema.Schema
}

func compileJSONSchema(name string, src []byte) (Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(resourceURL, bytes.NewReader(src)); err != nil {
		return nil, &CompileError{Name: name, Dialect: DialectJSONSchema, Err: err}
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, &CompileError{Name: name, Dialect: DialectJSONSchema, Err: err}
	}
	return &jsonSchema{name: name, compiled: compiled}, nil
}

func (s *jsonSchema) Name() string { return s.name }

func (s *jsonSchema) Dialect() Dialect { return DialectJSONSchema }

// Validate checks doc against the compiled schema. The leaf causes of the
// validation error tree become violations, in traversal order.
func (s *jsonSchema) Validate(doc any) ([]Violation, error) {
	err := s.compiled.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("json schema %s: %w", s.name, err)
	}
	var out []Violation
	collectLeaves(verr, &out)
	return dedupe(out), nil
}

func collectLeaves(e *jsonschema.ValidationError, out *[]Violation) {
	if len(e.Causes) == 0 {
		*out = append(*out, Violation{Path: e.InstanceLocation, Message: e.Message})
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}
