package store

import (
	"context"
	"fmt"
)

// Run is the recorded outcome of validating one document.
type Run struct {
	ID         string      `json:"id"`
	Seq        int64       `json:"seq"`
	Document   string      `json:"document"`
	Digest     string      `json:"digest"`
	Schema     string      `json:"schema"`
	Stage      string      `json:"stage"`
	Valid      bool        `json:"valid"`
	Code       string      `json:"code,omitempty"`
	Message    string      `json:"message,omitempty"`
	Violations []Violation `json:"violations"`
}

// Violation is one recorded structural or semantic problem.
type Violation struct {
	Code     string `json:"code,omitempty"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// WriteRun appends a run and returns it with ID and Seq filled in.
// An empty ID is replaced by one from the store's IDGenerator; an ID that
// already exists is an error.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.Violations == nil {
		run.Violations = []Violation{}
	}

	violationsJSON, err := marshalViolations(run.Violations)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, document, digest, schema_name, stage, valid, code, message, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Document,
		run.Digest,
		run.Schema,
		run.Stage,
		run.Valid,
		run.Code,
		run.Message,
		violationsJSON,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	run.Seq, err = res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("write run: seq: %w", err)
	}
	return run, nil
}
