package snapshot

import (
	"context"
	"fmt"

	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/storage"

	"gorm.io/gorm"
)

// insertBatch bounds the rows per INSERT statement.
const insertBatch = 500

// CacheEntry is one row of a stored cache mapping.
type CacheEntry struct {
	ID           uint   `gorm:"primaryKey"`
	Pair         string `gorm:"size:191;not null;index:idx_cache_pair_position,priority:1"`
	Position     int    `gorm:"not null;index:idx_cache_pair_position,priority:2"`
	Key          string `gorm:"size:1024;not null"`
	ObjectKey    string `gorm:"size:1024"`
	MD5          string `gorm:"column:md5;size:64"`
	LastModified int64
	Bytes        int64
	SourceKey    string `gorm:"size:1024"`
	TargetKey    string `gorm:"size:1024"`
}

// TableName overrides the table name used by GORM.
func (CacheEntry) TableName() string {
	return "sync_cache_entries"
}

// DBStore keeps the snapshot of one pair in the sync_cache_entries table.
type DBStore struct {
	db   *gorm.DB
	pair string
}

// NewDBStore returns a store for pair.
func NewDBStore(db *gorm.DB, pair string) *DBStore {
	return &DBStore{db: db, pair: pair}
}

// Migrate creates or updates the cache table.
func (s *DBStore) Migrate() error {
	return s.db.AutoMigrate(&CacheEntry{})
}

func (s *DBStore) Load(ctx context.Context) (*reconcile.Index, error) {
	var rows []CacheEntry
	if err := s.db.WithContext(ctx).Where("pair = ?", s.pair).Order("position").Find(&rows).Error; err != nil {
		return reconcile.NewIndex(), fmt.Errorf("load cache for %s: %w", s.pair, err)
	}
	idx := reconcile.NewIndex()
	for _, r := range rows {
		idx.Set(r.Key, &storage.FileEntry{
			Key:          r.ObjectKey,
			MD5:          r.MD5,
			LastModified: r.LastModified,
			Bytes:        r.Bytes,
			SourceKey:    r.SourceKey,
			TargetKey:    r.TargetKey,
		})
	}
	return idx, nil
}

// Save replaces the stored rows of the pair in one transaction.
func (s *DBStore) Save(ctx context.Context, idx *reconcile.Index) error {
	rows := make([]CacheEntry, 0, idx.Len())
	idx.Range(func(key string, e *storage.FileEntry) bool {
		rows = append(rows, CacheEntry{
			Pair:         s.pair,
			Position:     len(rows),
			Key:          key,
			ObjectKey:    e.Key,
			MD5:          e.MD5,
			LastModified: e.LastModified,
			Bytes:        e.Bytes,
			SourceKey:    e.SourceKey,
			TargetKey:    e.TargetKey,
		})
		return true
	})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pair = ?", s.pair).Delete(&CacheEntry{}).Error; err != nil {
			return err
		}
		for start := 0; start < len(rows); start += insertBatch {
			end := min(start+insertBatch, len(rows))
			batch := rows[start:end]
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save cache for %s: %w", s.pair, err)
	}
	return nil
}
