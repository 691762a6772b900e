package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the summary of one validation pass.
type Run struct {
	ID               string           `json:"id"`
	Seq              int64            `json:"seq"`
	Source           string           `json:"source"`
	ModelHash        string           `json:"model_hash"`
	ValidatorVersion string           `json:"validator_version"`
	Stats            validator.Stats  `json:"stats"`
	Errors           int              `json:"errors"`
	Warnings         int              `json:"warnings"`
	Pruned           []model.TypeName `json:"pruned"`
}

// NewRunID generates a time-ordered run identifier (UUIDv7).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RunFromResult builds a Run summary from a validation result.
func RunFromResult(source, modelHash string, result *validator.Result) Run {
	return Run{
		Source:           source,
		ModelHash:        modelHash,
		ValidatorVersion: model.ValidatorVersion,
		Stats:            result.Stats,
		Errors:           result.Report.ErrorCount(),
		Warnings:         result.Report.WarningCount(),
		Pruned:           result.Pruned,
	}
}

// WriteRun stores a run and its issues in one transaction. An empty ID is
// replaced by a new UUIDv7; Seq is always assigned here. The stored run is
// returned.
func (s *Store) WriteRun(ctx context.Context, run Run, issues []validator.ValidationError) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	pruned, err := marshalPruned(run.Pruned)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, model_hash, validator_version, total_types, visited_types, pruned_types, error_count, warning_count, pruned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Source,
		run.ModelHash,
		run.ValidatorVersion,
		run.Stats.Total,
		run.Stats.Visited,
		run.Stats.Pruned,
		run.Errors,
		run.Warnings,
		pruned,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for i, issue := range issues {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issues (run_id, seq, code, severity, endpoint, side, path, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i+1,
			issue.Code,
			string(issue.Severity),
			issue.Endpoint,
			string(issue.Side),
			issue.Path,
			issue.Message,
		)
		if err != nil {
			return Run{}, fmt.Errorf("write issue %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

const runColumns = `id, seq, source, model_hash, validator_version, total_types, visited_types, pruned_types, error_count, warning_count, pruned`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run    Run
		pruned string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Source,
		&run.ModelHash,
		&run.ValidatorVersion,
		&run.Stats.Total,
		&run.Stats.Visited,
		&run.Stats.Pruned,
		&run.Errors,
		&run.Warnings,
		&pruned,
	)
	if err != nil {
		return Run{}, err
	}
	run.Pruned, err = unmarshalPruned(pruned)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns every run ordered by seq ascending.
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// PreviousRun returns the latest run of the same model before the given run.
// The boolean is false when there is none.
func (s *Store) PreviousRun(ctx context.Context, run Run) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE model_hash = ? AND seq < ?
		ORDER BY seq DESC
		LIMIT 1
	`, run.ModelHash, run.Seq)
	prev, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("read previous run: %w", err)
	}
	return prev, true, nil
}

// ReadIssues returns the issues of a run in report order.
func (s *Store) ReadIssues(ctx context.Context, runID string) ([]validator.ValidationError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, severity, endpoint, side, path, message
		FROM issues
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := []validator.ValidationError{}
	for rows.Next() {
		var (
			e              validator.ValidationError
			severity, side string
		)
		if err := rows.Scan(&e.Code, &severity, &e.Endpoint, &side, &e.Path, &e.Message); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		e.Severity = validator.Severity(severity)
		e.Side = validator.Side(side)
		issues = append(issues, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}
	return issues, nil
}
