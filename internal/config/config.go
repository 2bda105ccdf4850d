// Package config handles service configuration loading.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gestpos/gestsync/internal/notify"
	"github.com/gestpos/gestsync/internal/resultlog"
)

// Config is the top-level configuration structure for gestsyncd.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Store     StoreConfig      `yaml:"store"`
	Sync      SyncConfig       `yaml:"sync"`
	ResultLog resultlog.Config `yaml:"resultlog"`
	Notify    notify.Config    `yaml:"notify"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`          // default ":8080"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default 15s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default 150s, sync calls are slow
}

// StoreConfig locates the local SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"` // default "gestsync.db"
}

// SyncConfig carries sync-wide defaults.
type SyncConfig struct {
	// DefaultCompanyCode is used when neither the request nor the active
	// configuration names a company code.
	DefaultCompanyCode string `yaml:"default_company_code"` // default "SCARL"
}

// Load reads and validates the YAML config at path, applying defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Defaults
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 150 * time.Second
	cfg.Store.Path = "gestsync.db"
	cfg.Sync.DefaultCompanyCode = "SCARL"
	cfg.ResultLog.TTL = 86400

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if cfg.ResultLog.Enabled && cfg.ResultLog.Address == "" {
		return nil, fmt.Errorf("config: resultlog.address is required when resultlog is enabled")
	}
	if cfg.Notify.Enabled {
		if cfg.Notify.Type == "" {
			return nil, fmt.Errorf("config: notify.type is required when notify is enabled")
		}
	}
	return cfg, nil
}
