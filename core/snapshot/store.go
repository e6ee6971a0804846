package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/carboneio/sclone/core/artifact"
	"github.com/carboneio/sclone/core/reconcile"
)

// ErrCorrupt is returned when a stored snapshot cannot be decoded.
var ErrCorrupt = errors.New("snapshot is corrupt")

// Store loads and saves a cache mapping.
type Store interface {
	Load(ctx context.Context) (*reconcile.Index, error)
	Save(ctx context.Context, idx *reconcile.Index) error
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the snapshot. A missing file yields an empty mapping.
func (s *FileStore) Load(_ context.Context) (*reconcile.Index, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return reconcile.NewIndex(), nil
	}
	if err != nil {
		return reconcile.NewIndex(), fmt.Errorf("read cache %s: %w", s.Path, err)
	}
	idx := reconcile.NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return reconcile.NewIndex(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path, err)
	}
	return idx, nil
}

// Save replaces the snapshot atomically.
func (s *FileStore) Save(_ context.Context, idx *reconcile.Index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := artifact.WriteFileAtomic(s.Path, data); err != nil {
		return fmt.Errorf("save cache %s: %w", s.Path, err)
	}
	return nil
}
