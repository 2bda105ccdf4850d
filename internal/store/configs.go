package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestpos/gestsync/internal/domain"
)

// CreateConfig saves a new external database configuration. The ID is
// assigned here; new configurations are never created active.
func (s *Store) CreateConfig(ctx context.Context, cfg domain.ExternalDBConfig) (*domain.ExternalDBConfig, error) {
	if cfg.Name == "" || cfg.Server == "" || cfg.Database == "" {
		return nil, fmt.Errorf("store: config name, server and database are required")
	}

	cfg.ID = uuid.NewString()
	cfg.IsActive = false
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	if cfg.Driver == "" {
		cfg.Driver = "mssql"
	}

	options, err := json.Marshal(cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("store: marshal options: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO external_db_configs
			(id, name, driver, server, db_name, username, password, options, is_active, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,0,?,?)
	`, cfg.ID, cfg.Name, cfg.Driver, cfg.Server, cfg.Database, cfg.Username, cfg.Password,
		string(options), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("store: create config: %w", err)
	}
	return &cfg, nil
}

// UpdateConfig replaces the editable fields of a saved configuration.
// IsActive is not touched here; activation goes through SetActive.
func (s *Store) UpdateConfig(ctx context.Context, cfg domain.ExternalDBConfig) error {
	options, err := json.Marshal(cfg.Options)
	if err != nil {
		return fmt.Errorf("store: marshal options: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE external_db_configs
		SET name=?, driver=?, server=?, db_name=?, username=?, password=?, options=?, updated_at=?
		WHERE id=?
	`, cfg.Name, cfg.Driver, cfg.Server, cfg.Database, cfg.Username, cfg.Password,
		string(options), time.Now().UTC().Format(time.RFC3339Nano), cfg.ID)
	if err != nil {
		return fmt.Errorf("store: update config %q: %w", cfg.ID, err)
	}
	return requireRow(res)
}

// DeleteConfig removes a saved configuration. The active configuration
// cannot be deleted; deactivate or activate another one first.
func (s *Store) DeleteConfig(ctx context.Context, id string) error {
	cfg, err := s.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	if cfg.IsActive {
		return ErrConfigActive
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM external_db_configs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("store: delete config %q: %w", id, err)
	}
	return requireRow(res)
}

// SetActive makes the given configuration the single active one. The
// deactivate-all-then-activate-one pair runs inside one transaction, so two
// concurrent activations cannot leave two rows active.
func (s *Store) SetActive(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`UPDATE external_db_configs SET is_active=0, updated_at=? WHERE is_active=1`, now); err != nil {
		return fmt.Errorf("store: deactivate configs: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE external_db_configs SET is_active=1, updated_at=? WHERE id=?`, now, id)
	if err != nil {
		return fmt.Errorf("store: activate config %q: %w", id, err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

// GetConfig fetches one configuration by id.
func (s *Store) GetConfig(ctx context.Context, id string) (*domain.ExternalDBConfig, error) {
	return s.scanConfig(s.db.QueryRowContext(ctx,
		configSelect+` WHERE id=?`, id))
}

// ActiveConfig returns the configuration currently designated for sync and
// probe operations, or ErrNotFound when none is active.
func (s *Store) ActiveConfig(ctx context.Context) (*domain.ExternalDBConfig, error) {
	return s.scanConfig(s.db.QueryRowContext(ctx,
		configSelect+` WHERE is_active=1`))
}

// ListConfigs returns every saved configuration, newest first.
func (s *Store) ListConfigs(ctx context.Context) ([]domain.ExternalDBConfig, error) {
	rows, err := s.db.QueryContext(ctx, configSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.ExternalDBConfig
	for rows.Next() {
		cfg, err := s.scanConfigRow(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

// TouchLastSync records the completion time of a successful domain sync.
func (s *Store) TouchLastSync(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE external_db_configs SET last_sync=?, updated_at=? WHERE id=?`,
		at.UTC().Format(time.RFC3339Nano), at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("store: touch last sync %q: %w", id, err)
	}
	return requireRow(res)
}

const configSelect = `
	SELECT id, name, driver, server, db_name, username, password, options,
	       is_active, last_sync, created_at, updated_at
	FROM external_db_configs`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanConfig(row *sql.Row) (*domain.ExternalDBConfig, error) {
	cfg, err := s.scanConfigRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return cfg, err
}

func (s *Store) scanConfigRow(row rowScanner) (*domain.ExternalDBConfig, error) {
	var (
		cfg      domain.ExternalDBConfig
		options  string
		active   int
		lastSync sql.NullString
		created  string
		updated  string
	)
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.Driver, &cfg.Server, &cfg.Database,
		&cfg.Username, &cfg.Password, &options, &active, &lastSync, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan config: %w", err)
	}

	if err := json.Unmarshal([]byte(options), &cfg.Options); err != nil {
		return nil, fmt.Errorf("store: decode options for %q: %w", cfg.ID, err)
	}
	cfg.IsActive = active != 0
	if lastSync.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastSync.String); err == nil {
			cfg.LastSync = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		cfg.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		cfg.UpdatedAt = t
	}
	return &cfg, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
