package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nao1215/firedocs/internal/model"
)

const runColumns = `run_id, job_id, start_url, scope_url, output_folder, domain_folder,
	status, pages, skipped, reason, started_at, finished_at`

// SaveRun records a finished crawl run. Saving a run ID again replaces the
// previous record.
func (s *StateDB) SaveRun(ctx context.Context, run *model.CrawlOutcome) error {
	query := `
	INSERT INTO crawl_runs (` + runColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		job_id = excluded.job_id,
		domain_folder = excluded.domain_folder,
		status = excluded.status,
		pages = excluded.pages,
		skipped = excluded.skipped,
		reason = excluded.reason,
		finished_at = excluded.finished_at
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.JobID,
		run.Request.StartURL,
		run.Request.ScopeURL,
		run.Request.OutputFolder,
		run.DomainFolder,
		run.Status.String(),
		run.Pages,
		run.Skipped,
		run.Reason,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *StateDB) ListRuns(ctx context.Context, limit int) ([]*model.CrawlOutcome, error) {
	query := `SELECT ` + runColumns + ` FROM crawl_runs ORDER BY started_at DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.CrawlOutcome
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID, or nil if there is none.
func (s *StateDB) GetRun(ctx context.Context, runID string) (*model.CrawlOutcome, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM crawl_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.CrawlOutcome, error) {
	var (
		run        model.CrawlOutcome
		status     string
		startedAt  string
		finishedAt string
	)

	err := row.Scan(
		&run.RunID,
		&run.JobID,
		&run.Request.StartURL,
		&run.Request.ScopeURL,
		&run.Request.OutputFolder,
		&run.DomainFolder,
		&status,
		&run.Pages,
		&run.Skipped,
		&run.Reason,
		&startedAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan crawl run: %w", err)
	}

	run.Status = model.ParseOutcomeStatus(status)
	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt)
	return &run, nil
}
