package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Format is a document-exchange format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q: want json or yaml", s)
	}
}

// FormatForPath picks the format from a file extension: .yaml and .yml
// are YAML, everything else is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// parse decodes doc into a generic JSON value. Input must be valid UTF-8;
// the decoders would otherwise substitute U+FFFD silently.
func parse(doc []byte, format Format) (any, error) {
	if !utf8.Valid(doc) {
		return nil, errors.New("document is not valid UTF-8")
	}
	switch format {
	case FormatJSON:
		return parseJSON(doc)
	case FormatYAML:
		return parseYAML(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// parseJSON requires exactly one JSON value.
func parseJSON(doc []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// parseYAML requires exactly one YAML document and normalizes it through
// JSON so it becomes the same value a JSON document would.
func parseYAML(doc []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(doc))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	var extra any
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, err
	default:
		return nil, errors.New("multiple YAML documents in one input")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("not representable as JSON: %w", err)
	}
	return parseJSON(data)
}
