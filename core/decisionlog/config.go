package decisionlog

import (
	"fmt"

	"github.com/kilianp07/powermanager/core/logger"
)

const (
	BackendNone   = "none"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config defines settings for decision log storage and rotation.
type Config struct {
	// Backend selects the log store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in
	// megabytes. Zero disables rotation of JSONL files.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Path == "" && c.Backend != BackendNone {
		c.Path = "decisions.jsonl"
		if c.Backend == BackendSQLite {
			c.Path = "decisions.db"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
		return nil
	case BackendJSONL, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation settings must not be negative")
	}
	return nil
}

// Open creates the store selected by cfg. It returns nil for the "none"
// backend. log may be nil.
func Open(cfg Config, log logger.Logger) (LogStore, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendJSONL, "":
		if cfg.MaxSizeMB > 0 {
			s, err := NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
			if err != nil {
				return nil, err
			}
			s.SetLogger(log)
			return s, nil
		}
		s, err := NewJSONLStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		s.SetLogger(log)
		return s, nil
	default:
		return nil, fmt.Errorf("decisionlog: unknown backend %s", cfg.Backend)
	}
}
