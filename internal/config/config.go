// Package config loads the charta YAML configuration file.
//
// Example:
//
//	schema: schemas/ir.cue
//	strict: true
//	version_constraint: ">= 0.1.0, < 1.0.0"
//	database: .charta/history.db
//	input_format: auto
//	max_document_bytes: 1048576
//
// Every key is optional. Unknown keys are rejected so typos surface early.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxDocumentBytes caps documents read by the CLI.
const DefaultMaxDocumentBytes int64 = 4 << 20

// Input formats.
const (
	InputAuto = "auto"
	InputJSON = "json"
	InputYAML = "yaml"
)

// Config holds CLI defaults. Explicit command-line flags override it.
type Config struct {
	// Schema is the path of a .json or .cue schema; empty means the
	// embedded JSON Schema.
	Schema string `yaml:"schema"`

	// Strict enables the strict semantic rules.
	Strict bool `yaml:"strict"`

	// VersionConstraint is a semver constraint on the IR version.
	VersionConstraint string `yaml:"version_constraint"`

	// Database is the SQLite history file; empty disables recording.
	Database string `yaml:"database"`

	// InputFormat is auto (by extension), json or yaml.
	InputFormat string `yaml:"input_format"`

	// MaxDocumentBytes is the largest document the CLI will read.
	MaxDocumentBytes int64 `yaml:"max_document_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the configuration at path. Relative schema and database
// paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	c.Schema = resolve(base, c.Schema)
	c.Database = resolve(base, c.Database)
	return c, nil
}

// Parse decodes configuration YAML. An empty document yields Default().
func Parse(data []byte) (*Config, error) {
	var c Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.InputFormat == "" {
		c.InputFormat = InputAuto
	}
	if c.MaxDocumentBytes == 0 {
		c.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
}

func (c *Config) validate() error {
	switch c.InputFormat {
	case InputAuto, InputJSON, InputYAML:
	default:
		return fmt.Errorf("input_format must be auto, json or yaml, got %q", c.InputFormat)
	}
	if c.MaxDocumentBytes < 0 {
		return fmt.Errorf("max_document_bytes must be positive, got %d", c.MaxDocumentBytes)
	}
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
