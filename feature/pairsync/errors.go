package pairsync

import (
	"errors"
	"fmt"

	"github.com/carboneio/sclone/core/storage"
)

// ErrAlreadyRunning is returned when a cycle is in progress in this process
// or another one holds the lock file.
var ErrAlreadyRunning = errors.New("sync already running")

// ErrHistoryDisabled is returned when run history is requested without a database.
var ErrHistoryDisabled = errors.New("run history requires the database")

// Stage is a step of a sync cycle.
type Stage string

const (
	StageListing         Stage = "listing"
	StageLoadingCache    Stage = "loading-cache"
	StageReconciling     Stage = "reconciling"
	StageSafetyCheck     Stage = "safety-check"
	StageDeletingTarget  Stage = "deleting-target"
	StageUploadingTarget Stage = "uploading-target"
	StageDeletingSource  Stage = "deleting-source"
	StageUploadingSource Stage = "uploading-source"
	StagePersisting      Stage = "persisting"
)

// StageError wraps a fatal failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ListingError reports a side that could not be listed.
type ListingError struct {
	Side string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Side, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// DeleteFailure lists the entries of a chunk that were not deleted.
// Deleted counts the objects of the chunk that were removed anyway.
type DeleteFailure struct {
	Entries []*storage.FileEntry
	Deleted int
	Err     error
}

func (e *DeleteFailure) Error() string {
	return fmt.Sprintf("%d objects not deleted: %v", len(e.Entries), e.Err)
}

func (e *DeleteFailure) Unwrap() error {
	return e.Err
}
