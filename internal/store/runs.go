package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestpos/gestsync/internal/domain"
)

// RecordRun appends one sync invocation to the history table and returns the
// stored row. History writes are best-effort bookkeeping for the admin view;
// a failure here must not fail the sync that produced it (the caller logs
// and moves on).
func (s *Store) RecordRun(ctx context.Context, run domain.SyncRun) (*domain.SyncRun, error) {
	run.ID = uuid.NewString()
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs
			(id, domain, config_id, status, extracted, updated, skipped, error, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`, run.ID, run.Domain, run.ConfigID, run.Status, run.Extracted, run.Updated, run.Skipped,
		run.Error, run.StartedAt.UTC().Format(time.RFC3339Nano), finished)
	if err != nil {
		return nil, fmt.Errorf("store: record run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent sync runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, config_id, status, extracted, updated, skipped, error, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		var (
			run      domain.SyncRun
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Domain, &run.ConfigID, &run.Status,
			&run.Extracted, &run.Updated, &run.Skipped, &run.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			run.StartedAt = t
		}
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
