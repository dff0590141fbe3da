package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/charta/internal/pipeline"
)

// Harness runs the cases of one scenario against one pipeline.
type Harness struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for case progress and the pipeline's stage
// transitions. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a test scenario and returns the result.
//
// The scenario's schema is compiled once and every case runs through the
// same pipeline, in order. Expectation mismatches fail the result; an error
// is returned only when the scenario cannot run at all (schema load
// failure, bad version constraint, unreadable document).
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))} // Suppress logs in tests
	for _, opt := range opts {
		opt(h)
	}

	pipelineOpts := []pipeline.Option{pipeline.WithLogger(h.logger)}
	if scenario.Strict {
		pipelineOpts = append(pipelineOpts, pipeline.WithStrict())
	}
	if scenario.VersionConstraint != "" {
		pipelineOpts = append(pipelineOpts, pipeline.WithVersionConstraint(scenario.VersionConstraint))
	}

	p, err := pipeline.Load(scenario.Schema, pipelineOpts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	h.pipeline = p

	result := NewResult()
	for i := range scenario.Cases {
		c := &scenario.Cases[i]
		outcome, err := h.runCase(c)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: case %q: %w", scenario.Name, c.Name, err)
		}
		result.AddOutcome(outcome)

		for _, mismatch := range checkExpectation(c, outcome) {
			result.AddError(mismatch.Error())
		}
		h.logger.Debug("case completed", "scenario", scenario.Name, "case", c.Name, "stage", outcome.Stage)
	}
	return result, nil
}

func (h *Harness) runCase(c *Case) (Outcome, error) {
	doc := []byte(c.Inline)
	if c.Document != "" {
		var err error
		doc, err = os.ReadFile(c.Document)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to read document: %w", err)
		}
	}

	report := h.pipeline.Run(doc, c.format())
	outcome := Outcome{
		Case:   c.Name,
		Stage:  string(report.Stage),
		Digest: report.Digest,
		Codes:  semanticCodes(report.Err),
	}
	if report.Err != nil {
		outcome.Error = report.Err.Error()
	}
	return outcome, nil
}

// semanticCodes returns the codes of every semantic violation in err.
func semanticCodes(err error) []string {
	var invalid *pipeline.InvalidStructureError
	if !errors.As(err, &invalid) {
		return nil
	}
	codes := make([]string, len(invalid.Violations))
	for i, v := range invalid.Violations {
		codes[i] = v.Code
	}
	return codes
}
