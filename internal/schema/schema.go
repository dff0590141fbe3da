package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed ir.schema.json
var defaultJSONSchema []byte

//go:embed ir.cue
var defaultCUESchema []byte

// Dialect is the language a schema document is written in.
type Dialect string

// Supported dialects.
const (
	DialectJSONSchema Dialect = "jsonschema"
	DialectCUE        Dialect = "cue"
)

// Violation is one structural problem in a candidate document.
type Violation struct {
	Path    string `json:"path"` // JSON pointer, "" for the root
	Message string `json:"message"`
}

// String formats the violation as "path: message".
func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, v.Message)
}

// Schema is a compiled structural schema.
//
// Validate returns nil violations when doc is accepted. A non-nil error
// means the validator could not run; it says nothing about doc.
// Implementations are safe for concurrent use.
type Schema interface {
	Name() string
	Dialect() Dialect
	Validate(doc any) ([]Violation, error)
}

// CompileError reports a schema document that cannot be compiled.
// It is a configuration error and is not retryable.
type CompileError struct {
	Name    string
	Dialect Dialect
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s schema %s: %v", e.Dialect, e.Name, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile compiles a schema document in the given dialect.
func Compile(name string, src []byte, dialect Dialect) (Schema, error) {
	switch dialect {
	case DialectJSONSchema:
		return compileJSONSchema(name, src)
	case DialectCUE:
		return compileCUE(name, src)
	default:
		return nil, &CompileError{Name: name, Dialect: dialect, Err: fmt.Errorf("unsupported dialect %q", dialect)}
	}
}

// Load reads and compiles the schema at path. The dialect is chosen from
// the file extension.
func Load(path string) (Schema, error) {
	dialect, err := DialectFor(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(path, src, dialect)
}

// DialectFor maps a schema file name to its dialect:
// .json is JSON Schema, .cue is CUE.
func DialectFor(path string) (Dialect, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DialectJSONSchema, nil
	case ".cue":
		return DialectCUE, nil
	default:
		return "", fmt.Errorf("cannot infer schema dialect from %q: want .json or .cue", path)
	}
}

var (
	defaultJSON = sync.OnceValue(func() Schema {
		return mustCompile("ir.schema.json", defaultJSONSchema, DialectJSONSchema)
	})
	defaultCUE = sync.OnceValue(func() Schema {
		return mustCompile("ir.cue", defaultCUESchema, DialectCUE)
	})
)

// Default returns the embedded JSON Schema for the IR.
func Default() Schema {
	return defaultJSON()
}

// DefaultCUE returns the embedded CUE schema for the IR.
func DefaultCUE() Schema {
	return defaultCUE()
}

// DefaultSource returns the embedded schema document for a dialect.
func DefaultSource(dialect Dialect) []byte {
	if dialect == DialectCUE {
		return defaultCUESchema
	}
	return defaultJSONSchema
}

func mustCompile(name string, src []byte, dialect Dialect) Schema {
	s, err := Compile(name, src, dialect)
	if err != nil {
		panic(err)
	}
	return s
}

// dedupe drops repeated violations, keeping first occurrences in order.
func dedupe(in []Violation) []Violation {
	seen := make(map[Violation]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
