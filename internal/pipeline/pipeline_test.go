package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charta/internal/ir"
	"github.com/roach88/charta/internal/schema"
	"github.com/roach88/charta/internal/semantic"
	"github.com/roach88/charta/internal/testutil"
)

// stubSchema is a structural validator with a fixed answer.
type stubSchema struct {
	violations []schema.Violation
	err        error
}

func (s stubSchema) Name() string            { return "stub" }
func (s stubSchema) Dialect() schema.Dialect { return schema.DialectJSONSchema }
func (s stubSchema) Validate(any) ([]schema.Violation, error) {
	return s.violations, s.err
}

func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(schema.Default(), opts...)
	require.NoError(t, err)
	return p
}

func requireInvalidStructure(t *testing.T, err error) *InvalidStructureError {
	t.Helper()
	require.Error(t, err)
	var ise *InvalidStructureError
	require.True(t, errors.As(err, &ise), "want *InvalidStructureError, got %T: %v", err, err)
	return ise
}

// =============================================================================
// End-to-end scenarios
// =============================================================================

func TestValidate_EndToEnd(t *testing.T) {
	out, err := newPipeline(t).Validate([]byte(testutil.ValidDocument))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "0.1.0", out.Version)
	assert.Equal(t, "m", out.Module.Name)
	require.Len(t, out.Module.Rungs, 1)
	c, ok := out.Module.Rungs[0].Guard.(*ir.Contact)
	require.True(t, ok)
	assert.Equal(t, "s", c.Name)
	assert.Equal(t, ir.ContactNO, c.ContactType)
	assert.Equal(t, ir.ActionEnergise, out.Module.Rungs[0].Actions[0].Type)
}

func TestValidate_MissingCoil(t *testing.T) {
	out, err := newPipeline(t).Validate([]byte(testutil.MissingCoilDocument))
	assert.Nil(t, out)

	ise := requireInvalidStructure(t, err)
	assert.Equal(t, StageSemantic, ise.Stage())
	first := ise.First()
	require.NotNil(t, first)
	assert.Equal(t, semantic.ErrUndefinedCoil, first.Code)
	assert.Equal(t, "r", first.Rung)
	assert.Equal(t, "missing", first.Name)
	assert.Contains(t, err.Error(), `"r"`)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestValidate_EmptyModuleName(t *testing.T) {
	p := newPipeline(t)
	doc := []byte(testutil.EmptyNameDocument)

	// Structurally well-formed...
	var v any
	require.NoError(t, json.Unmarshal(doc, &v))
	vs, err := p.Schema().Validate(v)
	require.NoError(t, err)
	assert.Empty(t, vs)

	// ...but semantically invalid.
	_, err = p.Validate(doc)
	ise := requireInvalidStructure(t, err)
	assert.Equal(t, StageSemantic, StageOf(err))
	assert.Equal(t, semantic.ErrEmptyModuleName, ise.First().Code)
}

func TestValidate_DuplicateSignal(t *testing.T) {
	doc := `{"version":"0.1.0","module":{"name":"m","signals":[{"name":"x"},{"name":"x"}]}}`

	_, err := newPipeline(t).Validate([]byte(doc))
	ise := requireInvalidStructure(t, err)
	assert.Equal(t, semantic.ErrDuplicateSignal, ise.First().Code)
	assert.Equal(t, "x", ise.First().Name)

	distinct := `{"version":"0.1.0","module":{"name":"m","signals":[{"name":"x"},{"name":"z"}]}}`
	_, err = newPipeline(t).Validate([]byte(distinct))
	assert.NoError(t, err)
}

func TestValidate_DanglingCoilFixedByDeclaration(t *testing.T) {
	dangling := strings.Replace(testutil.ValidDocument, `"coil":"c"`, `"coil":"y"`, 1)

	_, err := newPipeline(t).Validate([]byte(dangling))
	ise := requireInvalidStructure(t, err)
	assert.Equal(t, "r", ise.First().Rung)
	assert.Equal(t, "y", ise.First().Name)

	fixed := strings.Replace(dangling, `"coils":[{"name":"c"}]`, `"coils":[{"name":"c"},{"name":"y"}]`, 1)
	_, err = newPipeline(t).Validate([]byte(fixed))
	assert.NoError(t, err)
}

func TestValidate_CarriesAllSemanticViolations(t *testing.T) {
	doc := `{"version":"0.1.0","module":{"name":"","coils":[{"name":"c"},{"name":"c"}]}}`

	_, err := newPipeline(t).Validate([]byte(doc))
	ise := requireInvalidStructure(t, err)
	require.Len(t, ise.Violations, 2)
	assert.Equal(t, semantic.ErrEmptyModuleName, ise.Violations[0].Code)
	assert.Equal(t, semantic.ErrDuplicateCoil, ise.Violations[1].Code)
	assert.Contains(t, err.Error(), "(and 1 more)")
}

func TestValidate_RoundTripIdempotent(t *testing.T) {
	backends := map[string]schema.Schema{"jsonschema": schema.Default(), "cue": schema.DefaultCUE()}
	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			p, err := New(s)
			require.NoError(t, err)

			for _, doc := range []string{testutil.ValidDocument, testutil.RichDocument} {
				first := p.Run([]byte(doc), FormatJSON)
				require.NoError(t, first.Err)

				data, err := json.Marshal(first.IR)
				require.NoError(t, err)

				second := p.Run(data, FormatJSON)
				require.NoError(t, second.Err)
				assert.Equal(t, first.IR, second.IR)
				assert.Equal(t, first.Digest, second.Digest)
			}
		})
	}
}

func TestValidate_PreservesAbsentVersusEmpty(t *testing.T) {
	doc := `{"version":"0.1.0","module":{"name":"m","signals":[]}}`

	out, err := newPipeline(t).Validate([]byte(doc))
	require.NoError(t, err)
	assert.NotNil(t, out.Module.Signals)
	assert.Empty(t, out.Module.Signals)
	assert.Nil(t, out.Module.Coils)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(data))
}

// =============================================================================
// Formats
// =============================================================================

func TestValidateFormat_YAMLMatchesJSON(t *testing.T) {
	p := newPipeline(t)

	fromJSON := p.Run([]byte(testutil.ValidDocument), FormatJSON)
	fromYAML := p.Run([]byte(testutil.ValidYAMLDocument), FormatYAML)
	require.NoError(t, fromJSON.Err)
	require.NoError(t, fromYAML.Err)

	assert.Equal(t, fromJSON.IR, fromYAML.IR)
	assert.Equal(t, fromJSON.Digest, fromYAML.Digest)
	assert.Equal(t, FormatYAML, fromYAML.Format)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
	}{
		{"truncated json", `{"version":`, FormatJSON},
		{"trailing json", testutil.ValidDocument + ` {}`, FormatJSON},
		{"empty json", ``, FormatJSON},
		{"bad yaml", "module: [unclosed", FormatYAML},
		{"empty yaml", ``, FormatYAML},
		{"two yaml documents", "a: 1\n---\nb: 2\n", FormatYAML},
		{"unknown format", `{}`, Format("toml")},
		{"invalid utf-8 json", "{\"version\":\"0.1.0\",\"module\":{\"name\":\"m\xff\"}}", FormatJSON},
		{"invalid utf-8 yaml", "version: \"0.1.0\"\nmodule:\n  name: m\xff\n", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPipeline(t).Run([]byte(tt.doc), tt.format)
			require.Error(t, r.Err)
			assert.False(t, r.Valid())
			assert.Nil(t, r.IR)
			assert.Equal(t, StageParse, r.Stage)
			assert.Equal(t, ir.RawDigest([]byte(tt.doc)), r.Digest)

			var perr *DocumentParseError
			require.True(t, errors.As(r.Err, &perr))
			assert.Equal(t, tt.format, perr.Format)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatForPath("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatForPath("doc.YAML"))
	assert.Equal(t, FormatJSON, FormatForPath("doc.json"))
	assert.Equal(t, FormatJSON, FormatForPath("doc"))
}

// =============================================================================
// Stage tagging
// =============================================================================

func TestStructuralMismatch(t *testing.T) {
	doc := strings.Replace(testutil.ValidDocument, `"energise"`, `"toggle"`, 1)

	r := newPipeline(t).Run([]byte(doc), FormatJSON)
	assert.Equal(t, StageStructuralMismatch, r.Stage)
	assert.NotEmpty(t, r.Digest)

	var serr *StructuralValidationError
	require.True(t, errors.As(r.Err, &serr))
	assert.NoError(t, serr.Err)
	assert.NotEmpty(t, serr.Violations)
	assert.Contains(t, r.Err.Error(), "/module/rungs/0/actions/0/type")
}

func TestStructuralValidatorFailure(t *testing.T) {
	boom := errors.New("validator crashed")
	p, err := New(stubSchema{err: boom})
	require.NoError(t, err)

	_, err = p.Validate([]byte(testutil.ValidDocument))
	assert.Equal(t, StageStructural, StageOf(err))
	assert.True(t, errors.Is(err, boom))
}

func TestDeserializeFailure(t *testing.T) {
	p, err := New(stubSchema{})
	require.NoError(t, err)

	tests := map[string]string{
		"missing guard":      `{"version":"0.1.0","module":{"name":"m","rungs":[{"name":"r","actions":[]}]}}`,
		"unknown guard type": `{"version":"0.1.0","module":{"name":"m","rungs":[{"name":"r","guard":{"type":"xor"},"actions":[]}]}}`,
		"wrong value type":   `{"version":"0.1.0","module":{"name":42}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.Validate([]byte(doc))
			ise := requireInvalidStructure(t, err)
			assert.Equal(t, StageDeserialize, ise.Stage())
			assert.Nil(t, ise.First())
			assert.Error(t, ise.Err)
		})
	}
}

func TestDeserializeRequiresFields(t *testing.T) {
	p, err := New(stubSchema{})
	require.NoError(t, err)

	rung := func(body string) string {
		return `{"version":"0.1.0","module":{"name":"m","rungs":[` + body + `]}}`
	}
	contact := `{"type":"contact","name":"s","contact_type":"NO"}`

	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"no version", `{"module":{"name":"m"}}`, "/version"},
		{"null version", `{"version":null,"module":{"name":"m"}}`, "/version"},
		{"no module", `{"version":"0.1.0"}`, "/module"},
		{"no module name", `{"version":"0.1.0","module":{}}`, "/module/name"},
		{"upper-case keys", `{"VERSION":"0.1.0","Module":{"NAME":"m"}}`, "/module"},
		{"upper-case nested key", `{"version":"0.1.0","module":{"NAME":"m"}}`, "/module/name"},
		{"no actions", rung(`{"name":"r","guard":` + contact + `}`), "/module/rungs/0/actions"},
		{"action without coil", rung(`{"name":"r","guard":` + contact + `,"actions":[{"type":"energise"}]}`), "/module/rungs/0/actions/0/coil"},
		{"action without type", rung(`{"name":"r","guard":` + contact + `,"actions":[{"coil":"c"}]}`), "/module/rungs/0/actions/0/type"},
		{"contact without contact_type", rung(`{"name":"r","guard":{"type":"not","expr":{"type":"contact","name":"s"}},"actions":[]}`), "/module/rungs/0/guard/expr/contact_type"},
		{"port without type", `{"version":"0.1.0","module":{"name":"m","blocks":[{"name":"b","inputs":[{"name":"in"}]}]}}`, "/module/blocks/0/inputs/0/type"},
		{"wire without target", `{"version":"0.1.0","module":{"name":"m","networks":[{"name":"n","wires":[{"source":"a"}]}]}}`, "/module/networks/0/wires/0/target"},
		{"output without source", `{"version":"0.1.0","module":{"name":"m","networks":[{"name":"n","outputs":[{"name":"o"}]}]}}`, "/module/networks/0/outputs/0/source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Validate([]byte(tt.doc))
			ise := requireInvalidStructure(t, err)
			assert.Equal(t, StageDeserialize, ise.Stage())

			var ferr *ir.FieldError
			require.True(t, errors.As(err, &ferr), "want *ir.FieldError, got %v", err)
			assert.Equal(t, tt.path, ferr.Path)
		})
	}
}

func TestDeserializeMatchesKeysExactly(t *testing.T) {
	p, err := New(stubSchema{})
	require.NoError(t, err)

	doc := `{"version":"0.1.0","module":{"name":"m","NAME":"shadow","Signals":[{"name":"x"}],"extra":1}}`
	out, err := p.Validate([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "m", out.Module.Name)
	assert.Nil(t, out.Module.Signals)
}

func TestSemanticNeverRunsOnStructurallyInvalidDocument(t *testing.T) {
	// Both structurally invalid and semantically invalid; structural wins.
	doc := `{"version":"0.1.0","module":{"name":"","coils":[{"name":"c"},{"name":"c"}],"extra":true}}`

	_, err := newPipeline(t).Validate([]byte(doc))
	assert.Equal(t, StageStructuralMismatch, StageOf(err))
}

func TestStageOf(t *testing.T) {
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
	assert.Equal(t, Stage(""), StageOf(nil))

	wrapped := fmt.Errorf("outer: %w", &SchemaLoadError{Path: "x", Err: errors.New("y")})
	assert.Equal(t, StageSchemaLoad, StageOf(wrapped))
}

// =============================================================================
// Construction
// =============================================================================

func TestLoad_SchemaErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":`), 0o644))

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad} {
		p, err := Load(path)
		assert.Nil(t, p)
		var lerr *SchemaLoadError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, path, lerr.Path)
		assert.Equal(t, StageSchemaLoad, StageOf(err))
	}

	var cerr *schema.CompileError
	_, err := Load(bad)
	assert.True(t, errors.As(err, &cerr))
}

func TestLoad_DefaultAndFile(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, schema.DialectJSONSchema, p.Schema().Dialect())

	path := filepath.Join(t.TempDir(), "ir.cue")
	require.NoError(t, os.WriteFile(path, schema.DefaultSource(schema.DialectCUE), 0o644))
	p, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, schema.DialectCUE, p.Schema().Dialect())

	out, err := p.Validate([]byte(testutil.ValidDocument))
	require.NoError(t, err)
	assert.Equal(t, "m", out.Module.Name)
}

func TestValidateIR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.schema.json")
	require.NoError(t, os.WriteFile(path, schema.DefaultSource(schema.DialectJSONSchema), 0o644))

	out, err := ValidateIR(testutil.ValidDocument, path)
	require.NoError(t, err)
	assert.Equal(t, "m", out.Module.Name)

	_, err = ValidateIR(testutil.ValidDocument, filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, StageSchemaLoad, StageOf(err))

	_, err = ValidateIR(testutil.MissingCoilDocument, path)
	assert.Equal(t, StageSemantic, StageOf(err))
}

func TestVersionConstraint(t *testing.T) {
	p := newPipeline(t, WithVersionConstraint(">= 0.1.0, < 1.0.0"))
	_, err := p.Validate([]byte(testutil.ValidDocument))
	require.NoError(t, err)

	p = newPipeline(t, WithVersionConstraint(">= 1.0.0"))
	_, err = p.Validate([]byte(testutil.ValidDocument))
	ise := requireInvalidStructure(t, err)
	assert.Equal(t, StageSemantic, ise.Stage())
	assert.Equal(t, semantic.ErrVersionConstraint, ise.First().Code)
	assert.Equal(t, "version", ise.First().Field)

	// Without a constraint any non-empty version passes.
	doc := strings.Replace(testutil.ValidDocument, `"0.1.0"`, `"draft"`, 1)
	_, err = newPipeline(t).Validate([]byte(doc))
	assert.NoError(t, err)

	_, err = New(schema.Default(), WithVersionConstraint("not a constraint"))
	assert.Error(t, err)
}

func TestStrict(t *testing.T) {
	doc := strings.Replace(testutil.ValidDocument, `"name":"s","contact_type"`, `"name":"ghost","contact_type"`, 1)

	_, err := newPipeline(t).Validate([]byte(doc))
	require.NoError(t, err)

	_, err = newPipeline(t, WithStrict()).Validate([]byte(doc))
	ise := requireInvalidStructure(t, err)
	assert.Equal(t, semantic.ErrUndefinedSignal, ise.First().Code)
	assert.Equal(t, "ghost", ise.First().Name)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newPipeline(t, WithLogger(logger))

	_, err := p.Validate([]byte(testutil.ValidDocument))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "stage=parse")
	assert.Contains(t, buf.String(), "document valid")

	buf.Reset()
	_, err = p.Validate([]byte(testutil.MissingCoilDocument))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "validation failed")
	assert.Contains(t, buf.String(), "stage=semantic")
}

func TestConcurrentValidate(t *testing.T) {
	p := newPipeline(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				out, err := p.Validate([]byte(testutil.ValidDocument))
				assert.NoError(t, err)
				assert.Equal(t, "m", out.Module.Name)
				return
			}
			_, err := p.Validate([]byte(testutil.MissingCoilDocument))
			assert.Equal(t, StageSemantic, StageOf(err))
		}(i)
	}
	wg.Wait()
}
