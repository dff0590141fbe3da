package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/charta/internal/schema"
	"github.com/roach88/charta/internal/semantic"
)

// Stage names a step of the pipeline.
type Stage string

// Pipeline stages, in order. StageValid marks a document that passed them all.
const (
	StageSchemaLoad         Stage = "schema-load"
	StageParse              Stage = "parse"
	StageStructural         Stage = "structural"
	StageStructuralMismatch Stage = "structural-mismatch"
	StageDeserialize        Stage = "deserialize"
	StageSemantic           Stage = "semantic"
	StageValid              Stage = "valid"
)

// StageOf returns the stage an error was raised at, or "" if err does not
// come from this package.
func StageOf(err error) Stage {
	var staged interface{ Stage() Stage }
	if errors.As(err, &staged) {
		return staged.Stage()
	}
	return ""
}

// SchemaLoadError reports a schema that cannot be read or compiled.
// It is an operator error and should not be retried automatically.
type SchemaLoadError struct {
	Path string
	Err  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("load schema %s: %v", e.Path, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

// Stage implements the staged error convention.
func (e *SchemaLoadError) Stage() Stage { return StageSchemaLoad }

// DocumentParseError reports a document that is not well-formed JSON/YAML.
type DocumentParseError struct {
	Format Format
	Err    error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parse %s document: %v", e.Format, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// Stage implements the staged error convention.
func (e *DocumentParseError) Stage() Stage { return StageParse }

// StructuralValidationError reports a document rejected by the schema.
// When Err is set the validator itself failed to run and Violations is empty.
type StructuralValidationError struct {
	Violations []schema.Violation
	Err        error
}

func (e *StructuralValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural validation could not run: %v", e.Err)
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("structural validation failed with %d violation(s): %s", len(e.Violations), strings.Join(parts, "; "))
}

func (e *StructuralValidationError) Unwrap() error { return e.Err }

// Stage is StageStructural when the validator failed to run and
// StageStructuralMismatch when the document did not conform.
func (e *StructuralValidationError) Stage() Stage {
	if e.Err != nil {
		return StageStructural
	}
	return StageStructuralMismatch
}

// InvalidStructureError reports a structurally valid document whose content
// is wrong: it cannot be decoded into the IR (At == StageDeserialize) or it
// breaks a semantic invariant (At == StageSemantic). Violations carries
// every semantic violation found; the first one is the headline.
type InvalidStructureError struct {
	At         Stage
	Violations []semantic.Violation
	Err        error
}

func (e *InvalidStructureError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("invalid structure: %v", e.Err)
	}
	msg := "invalid structure: " + e.Violations[0].Message
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func (e *InvalidStructureError) Unwrap() error { return e.Err }

// Stage implements the staged error convention.
func (e *InvalidStructureError) Stage() Stage { return e.At }

// First returns the headline violation, or nil for deserialize failures.
func (e *InvalidStructureError) First() *semantic.Violation {
	if len(e.Violations) == 0 {
		return nil
	}
	return &e.Violations[0]
}
