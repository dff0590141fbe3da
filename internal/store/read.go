package store

import (
	"context"
	"database/sql"
	"fmt"
)

const runColumns = `seq, id, document, digest, schema_name, stage, valid, code, message, violations`

// ListRuns returns the most recent limit runs, oldest first.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	}
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM (
			SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC
	`, limit)
}

// RunsByDigest returns every run of the document with the given digest,
// oldest first.
func (s *Store) RunsByDigest(ctx context.Context, digest string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE digest = ?
		ORDER BY seq ASC
	`, digest)
}

// GetRun returns the run with the given ID. Returns sql.ErrNoRows
// (wrapped) when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row in runColumns order.
func scanRun(row scanner) (Run, error) {
	var (
		run            Run
		violationsJSON string
	)
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.Document,
		&run.Digest,
		&run.Schema,
		&run.Stage,
		&run.Valid,
		&run.Code,
		&run.Message,
		&violationsJSON,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Violations, err = unmarshalViolations(violationsJSON)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}
