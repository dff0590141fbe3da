package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/charta/internal/pipeline"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is a .json or .cue schema path; empty selects the embedded
	// JSON Schema.
	Schema string `yaml:"schema,omitempty"`

	// Strict enables the strict semantic rules.
	Strict bool `yaml:"strict,omitempty"`

	// VersionConstraint is a semver constraint on the IR version.
	VersionConstraint string `yaml:"version_constraint,omitempty"`

	// Cases are validated in order against one pipeline.
	Cases []Case `yaml:"cases"`
}

// Case is one document and its expected outcome.
type Case struct {
	Name string `yaml:"name"`

	// Document is a path to the document. Mutually exclusive with Inline.
	Document string `yaml:"document,omitempty"`

	// Inline is the document itself.
	Inline string `yaml:"inline,omitempty"`

	// Format is json or yaml. Defaults to the Document extension, or json
	// for inline documents.
	Format string `yaml:"format,omitempty"`

	Expect Expectation `yaml:"expect"`
}

// Expectation is the outcome a case must produce.
type Expectation struct {
	// Stage is the stage the pipeline stops at; "valid" on success.
	Stage string `yaml:"stage"`

	// Codes are the semantic violation codes, in report order.
	// Nil means codes are not checked; an empty list requires none.
	Codes []string `yaml:"codes,omitempty"`

	// Contains must be a substring of the error message.
	Contains string `yaml:"contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Document and schema paths are resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving document and schema paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.Schema = resolve(basePath, scenario.Schema)
	for i := range scenario.Cases {
		scenario.Cases[i].Document = resolve(basePath, scenario.Cases[i].Document)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without resolving or validating paths.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

var knownStages = map[string]bool{
	string(pipeline.StageParse):              true,
	string(pipeline.StageStructural):         true,
	string(pipeline.StageStructuralMismatch): true,
	string(pipeline.StageDeserialize):        true,
	string(pipeline.StageSemantic):           true,
	string(pipeline.StageValid):              true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
	}

	return nil
}

// validateCase validates a single case.
func validateCase(index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}

	switch {
	case c.Document == "" && c.Inline == "":
		return fmt.Errorf("cases[%d]: one of document or inline is required", index)
	case c.Document != "" && c.Inline != "":
		return fmt.Errorf("cases[%d]: document and inline are mutually exclusive", index)
	case c.Document != "":
		if _, err := os.Stat(c.Document); os.IsNotExist(err) {
			return fmt.Errorf("cases[%d]: document not found: %s", index, c.Document)
		}
	}

	if c.Format != "" {
		if _, err := pipeline.ParseFormat(c.Format); err != nil {
			return fmt.Errorf("cases[%d]: %w", index, err)
		}
	}

	if c.Expect.Stage == "" {
		return fmt.Errorf("cases[%d].expect: stage is required", index)
	}
	if !knownStages[c.Expect.Stage] {
		return fmt.Errorf("cases[%d].expect: unknown stage %q", index, c.Expect.Stage)
	}
	return nil
}

// format returns the case's document format.
func (c *Case) format() pipeline.Format {
	if c.Format != "" {
		f, _ := pipeline.ParseFormat(c.Format)
		return f
	}
	if c.Inline != "" {
		return pipeline.FormatJSON
	}
	return pipeline.FormatForPath(c.Document)
}
