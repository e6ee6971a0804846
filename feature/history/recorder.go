package history

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const (
	// DefaultLimit is used by Recent when limit is not positive.
	DefaultLimit = 20
	// MaxLimit caps Recent.
	MaxLimit = 500
)

// Recorder reads and writes cycle summaries.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a recorder backed by db.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Migrate creates or updates the sync_runs table.
func (r *Recorder) Migrate() error {
	return r.db.AutoMigrate(&Run{})
}

// Record stores run.
func (r *Recorder) Record(ctx context.Context, run *Run) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record run %s: %w", run.CycleID, err)
	}
	return nil
}

// Recent returns the latest runs of pair, newest first. An empty pair lists
// every pair.
func (r *Recorder) Recent(ctx context.Context, pair string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := r.db.WithContext(ctx)
	if pair != "" {
		q = q.Where("pair = ?", pair)
	}

	var runs []Run
	if err := q.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
