package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, InputAuto, c.InputFormat)
	assert.Equal(t, DefaultMaxDocumentBytes, c.MaxDocumentBytes)
	assert.Empty(t, c.Schema)
	assert.False(t, c.Strict)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
schema: /etc/charta/ir.cue
strict: true
version_constraint: ">= 0.1.0"
database: /var/lib/charta.db
input_format: yaml
max_document_bytes: 1024
`))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Schema:            "/etc/charta/ir.cue",
		Strict:            true,
		VersionConstraint: ">= 0.1.0",
		Database:          "/var/lib/charta.db",
		InputFormat:       InputYAML,
		MaxDocumentBytes:  1024,
	}, c)
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown key", "schemas: x.json\n", "failed to parse YAML"},
		{"bad format", "input_format: toml\n", "input_format must be"},
		{"negative size", "max_document_bytes: -1\n", "max_document_bytes must be positive"},
		{"wrong type", "strict: [1]\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: schemas/ir.cue\ndatabase: /abs/history.db\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schemas", "ir.cue"), c.Schema)
	assert.Equal(t, "/abs/history.db", c.Database)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
