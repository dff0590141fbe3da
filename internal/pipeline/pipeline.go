package pipeline

import (
	"log/slog"

	"github.com/roach88/charta/internal/ir"
	"github.com/roach88/charta/internal/schema"
	"github.com/roach88/charta/internal/semantic"
)

// Pipeline validates documents against one compiled schema.
type Pipeline struct {
	schema     schema.Schema
	logger     *slog.Logger
	semantic   []semantic.Option
	constraint string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage transitions. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithStrict enables the strict semantic rules.
func WithStrict() Option {
	return func(p *Pipeline) { p.semantic = append(p.semantic, semantic.Strict()) }
}

// WithVersionConstraint requires the IR version to satisfy a semver
// constraint such as ">= 0.1.0, < 1.0.0". Without it the version is only
// required to be non-empty.
func WithVersionConstraint(c string) Option {
	return func(p *Pipeline) { p.constraint = c }
}

// New builds a pipeline around an already compiled schema.
// It fails only on an unparseable version constraint.
func New(s schema.Schema, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{schema: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.constraint != "" {
		if err := ir.ParseConstraint(p.constraint); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Load compiles the schema at schemaPath and builds a pipeline around it.
// An empty path selects the embedded JSON Schema. Schema failures are
// returned as *SchemaLoadError.
func Load(schemaPath string, opts ...Option) (*Pipeline, error) {
	var s schema.Schema
	if schemaPath == "" {
		s = schema.Default()
	} else {
		var err error
		s, err = schema.Load(schemaPath)
		if err != nil {
			return nil, &SchemaLoadError{Path: schemaPath, Err: err}
		}
	}
	return New(s, opts...)
}

// ValidateIR compiles the schema at schemaPath and validates one JSON
// document against it.
func ValidateIR(doc string, schemaPath string) (*ir.IR, error) {
	p, err := Load(schemaPath)
	if err != nil {
		return nil, err
	}
	return p.Validate([]byte(doc))
}

// Schema returns the compiled schema the pipeline validates against.
func (p *Pipeline) Schema() schema.Schema {
	return p.schema
}

// Validate runs a JSON document through every stage.
func (p *Pipeline) Validate(doc []byte) (*ir.IR, error) {
	return p.ValidateFormat(doc, FormatJSON)
}

// ValidateFormat runs a document in the given format through every stage.
// On failure the IR is nil.
func (p *Pipeline) ValidateFormat(doc []byte, format Format) (*ir.IR, error) {
	r := p.Run(doc, format)
	return r.IR, r.Err
}

// Report is the outcome of one run.
type Report struct {
	// Stage is StageValid on success, otherwise the stage that failed.
	Stage  Stage
	Format Format
	// Digest identifies the document: the canonical document digest once
	// parsed, the raw digest if parsing failed.
	Digest string
	IR     *ir.IR
	Err    error
}

// Valid reports whether the document passed every stage.
func (r *Report) Valid() bool {
	return r.Stage == StageValid
}

// Run runs a document through every stage and reports how far it got.
func (p *Pipeline) Run(doc []byte, format Format) *Report {
	r := &Report{Format: format}

	value, err := parse(doc, format)
	if err != nil {
		r.Digest = ir.RawDigest(doc)
		return p.fail(r, &DocumentParseError{Format: format, Err: err})
	}
	r.Digest, err = ir.DocumentDigest(value)
	if err != nil {
		r.Digest = ir.RawDigest(doc)
		return p.fail(r, &DocumentParseError{Format: format, Err: err})
	}
	p.passed(r, StageParse)

	violations, err := p.schema.Validate(value)
	if err != nil {
		return p.fail(r, &StructuralValidationError{Err: err})
	}
	if len(violations) > 0 {
		return p.fail(r, &StructuralValidationError{Violations: violations})
	}
	p.passed(r, StageStructuralMismatch)

	out, err := ir.FromValue(value)
	if err != nil {
		return p.fail(r, &InvalidStructureError{At: StageDeserialize, Err: err})
	}
	p.passed(r, StageDeserialize)

	if p.constraint != "" {
		if err := ir.CheckVersion(out.Version, p.constraint); err != nil {
			return p.fail(r, &InvalidStructureError{
				At: StageSemantic,
				Violations: []semantic.Violation{{
					Code:    semantic.ErrVersionConstraint,
					Field:   "version",
					Message: err.Error(),
				}},
				Err: err,
			})
		}
	}

	if vs := semantic.Validate(out, p.semantic...); len(vs) > 0 {
		return p.fail(r, &InvalidStructureError{At: StageSemantic, Violations: vs})
	}

	r.Stage = StageValid
	r.IR = out
	p.logger.Debug("document valid", "digest", r.Digest, "module", out.Module.Name)
	return r
}

func (p *Pipeline) passed(r *Report, stage Stage) {
	p.logger.Debug("stage passed", "stage", stage, "digest", r.Digest)
}

func (p *Pipeline) fail(r *Report, err error) *Report {
	r.Stage = StageOf(err)
	r.Err = err
	p.logger.Info("validation failed", "stage", r.Stage, "digest", r.Digest, "error", err)
	return r
}
