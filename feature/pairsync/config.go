package pairsync

import (
	"fmt"
	"time"

	"github.com/carboneio/sclone/core/reconcile"
)

// Cache drivers.
const (
	CacheDriverFile     = "file"
	CacheDriverDatabase = "database"
)

// Config holds the sync section of the configuration.
type Config struct {
	// Name identifies the pair in logs, artifacts and the database.
	Name string `mapstructure:"name" default:"default"`
	// Mode is unidirectional or bidirectional.
	Mode string `mapstructure:"mode" default:"unidirectional"`
	// Delete propagates deletions.
	Delete bool `mapstructure:"delete" default:"false"`
	// TieBreak resolves equal timestamps in bidirectional mode: none, source, target or hash.
	TieBreak string `mapstructure:"tie_break" default:"none"`
	// MaxDeletions aborts a cycle deleting more objects from one side. Negative disables.
	MaxDeletions int `mapstructure:"max_deletions" default:"100"`
	// Transfers is the number of concurrent lanes.
	Transfers int `mapstructure:"transfers" default:"15"`
	// Retry is the number of extra attempts for failed items.
	Retry int `mapstructure:"retry" default:"0"`
	// Delay pauses each lane between two items.
	Delay time.Duration `mapstructure:"delay" default:"0s"`
	// IntegrityCheck verifies downloads against their etag.
	IntegrityCheck bool `mapstructure:"integrity_check" default:"false"`
	// Interval is the daemon period.
	Interval time.Duration `mapstructure:"interval" default:"1h"`
	// CacheFile is the snapshot path for the file driver.
	CacheFile string `mapstructure:"cache_file" default:"listFiles.cache.json"`
	// CacheDriver is file or database.
	CacheDriver string `mapstructure:"cache_driver" default:"file"`
	// LockFile guards against concurrent processes. Empty disables it.
	LockFile string `mapstructure:"lock_file" default:"sclone.lock"`
	// ArtifactDir receives plan, errors and logs artifacts.
	ArtifactDir string `mapstructure:"artifact_dir" default:"logs"`
	// ArtifactRetention is the age after which artifacts are pruned. Zero keeps them.
	ArtifactRetention time.Duration `mapstructure:"artifact_retention" default:"24h"`
	// LogSync writes the plan artifact on every cycle.
	LogSync bool `mapstructure:"log_sync" default:"false"`
	// Progress prints lane progress lines.
	Progress bool `mapstructure:"progress" default:"false"`
}

// Policy converts the configuration into reconciliation rules.
func (c Config) Policy() (reconcile.Policy, error) {
	mode, err := reconcile.ParseMode(c.Mode)
	if err != nil {
		return reconcile.Policy{}, err
	}
	tie, err := reconcile.ParseTieBreak(c.TieBreak)
	if err != nil {
		return reconcile.Policy{}, err
	}
	return reconcile.Policy{Mode: mode, Deletion: c.Delete, TieBreak: tie}, nil
}

// Validate checks the sync section.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch c.CacheDriver {
	case CacheDriverFile, CacheDriverDatabase:
	default:
		return fmt.Errorf("unsupported cache driver %q (expected file or database)", c.CacheDriver)
	}
	if c.Transfers < 1 {
		return fmt.Errorf("transfers must be at least 1, got %d", c.Transfers)
	}
	if c.Retry < 0 {
		return fmt.Errorf("retry must not be negative, got %d", c.Retry)
	}
	return nil
}
