package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema(t *testing.T) {
	cuePath := filepath.Join("..", "schema", "ir.cue")
	jsonPath := filepath.Join("..", "schema", "ir.schema.json")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"embedded json schema", []string{"check-schema"}, "✓ ir.schema.json (jsonschema)\n"},
		{"embedded cue", []string{"check-schema", "--cue"}, "✓ ir.cue (cue)\n"},
		{"cue file", []string{"check-schema", cuePath}, "✓ " + cuePath + " (cue)\n"},
		{"json schema file", []string{"check-schema", jsonPath}, "✓ " + jsonPath + " (jsonschema)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, nil, nil, tt.args...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestCheckSchema_JSON(t *testing.T) {
	res := execute(t, nil, nil, "--format", "json", "check-schema", "--cue")

	require.NoError(t, res.err)
	resp := decodeResponse[SchemaResult](t, res.stdout)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, SchemaResult{Schema: "ir.cue", Dialect: "cue"}, resp.Data)
}

func TestCheckSchema_Failures(t *testing.T) {
	for _, path := range []string{
		"testdata/schemas/broken.json",
		"testdata/schemas/broken.cue",
		"testdata/schemas/schema.txt",
		"testdata/schemas/nope.json",
	} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			res := execute(t, nil, nil, "--format", "json", "check-schema", path)

			require.Error(t, res.err)
			assert.Equal(t, ExitCommandError, GetExitCode(res.err))

			resp := decodeResponse[any](t, res.stdout)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeSchemaLoad, resp.Error.Code)
		})
	}
}
