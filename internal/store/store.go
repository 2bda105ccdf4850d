// Package store is the local POS database the sync pipelines reconcile
// into: catalog tables keyed by natural code, the saved external database
// configurations, and the sync run history. Backed by SQLite so a till can
// run fully standalone.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrNotFound     = errors.New("store: not found")
	ErrConfigActive = errors.New("store: configuration is active")
)

// Store wraps the local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the local database at path and applies the
// schema. Use ":memory:" for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}

	// SQLite allows one writer; serialize access instead of surfacing
	// SQLITE_BUSY to handlers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS products (
			code                 TEXT PRIMARY KEY,
			description          TEXT NOT NULL DEFAULT '',
			barcode              TEXT,
			price                TEXT NOT NULL DEFAULT '0',
			vat_rate             TEXT NOT NULL DEFAULT '0',
			discount1            TEXT NOT NULL DEFAULT '0',
			discount2            TEXT NOT NULL DEFAULT '0',
			discount3            TEXT NOT NULL DEFAULT '0',
			discount4            TEXT NOT NULL DEFAULT '0',
			department_code      TEXT,
			category_code        TEXT,
			category_description TEXT,
			lot_managed          INTEGER NOT NULL DEFAULT 0,
			activation_date      TEXT,
			created_at           TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at           TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			code         TEXT PRIMARY KEY,
			name         TEXT NOT NULL DEFAULT '',
			vat_number   TEXT,
			fiscal_code  TEXT,
			sdi_code     TEXT,
			address      TEXT,
			city         TEXT,
			province     TEXT,
			country      TEXT,
			payment_code TEXT,
			created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS payment_methods (
			code        TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT 'other',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS external_db_configs (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			driver     TEXT NOT NULL DEFAULT 'mssql',
			server     TEXT NOT NULL,
			db_name    TEXT NOT NULL,
			username   TEXT NOT NULL,
			password   TEXT NOT NULL,
			options    TEXT NOT NULL DEFAULT '{}',
			is_active  INTEGER NOT NULL DEFAULT 0,
			last_sync  TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id          TEXT PRIMARY KEY,
			domain      TEXT NOT NULL,
			config_id   TEXT NOT NULL,
			status      TEXT NOT NULL,
			extracted   INTEGER NOT NULL DEFAULT 0,
			updated     INTEGER NOT NULL DEFAULT 0,
			skipped     INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			started_at  TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}
