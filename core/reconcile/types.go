package reconcile

import (
	"fmt"

	"github.com/carboneio/sclone/core/storage"
)

// Mode selects how the two sides of a pair relate.
type Mode string

const (
	// Unidirectional mirrors the source onto the target.
	Unidirectional Mode = "unidirectional"
	// Bidirectional treats both sides as peers and uses the cache to tell
	// new objects from deleted ones.
	Bidirectional Mode = "bidirectional"
)

// ModeError is returned for an unsupported sync mode.
type ModeError struct {
	Mode string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("unsupported sync mode %q (expected %s or %s)", e.Mode, Unidirectional, Bidirectional)
}

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Unidirectional, Bidirectional:
		return m, nil
	default:
		return "", &ModeError{Mode: s}
	}
}

// TieBreak decides the winner when both sides changed at the same millisecond.
type TieBreak string

const (
	TieNone   TieBreak = "none"
	TieSource TieBreak = "source"
	TieTarget TieBreak = "target"
	TieHash   TieBreak = "hash"
)

// ParseTieBreak validates a configured tie-break rule. Empty means none.
func ParseTieBreak(s string) (TieBreak, error) {
	switch t := TieBreak(s); t {
	case "":
		return TieNone, nil
	case TieNone, TieSource, TieTarget, TieHash:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported tie break %q (expected none, source, target or hash)", s)
	}
}

// Policy holds the reconciliation rules of a pair.
type Policy struct {
	Mode     Mode
	Deletion bool
	TieBreak TieBreak
}

// State holds the three mappings of a pair. ComputeSync mutates them into
// the projected end state.
type State struct {
	Source *Index
	Target *Index
	Cache  *Index
}

// NewState returns a state with empty mappings for any nil field.
func NewState(source, target, cache *Index) *State {
	if source == nil {
		source = NewIndex()
	}
	if target == nil {
		target = NewIndex()
	}
	if cache == nil {
		cache = NewIndex()
	}
	return &State{Source: source, Target: target, Cache: cache}
}

// OperationSet lists what must be executed to converge both sides.
type OperationSet struct {
	UploadSource  []*storage.FileEntry `json:"toUploadSource"`
	UploadTarget  []*storage.FileEntry `json:"toUploadTarget"`
	DeleteSource  []*storage.FileEntry `json:"toDeleteSource"`
	DeleteTarget  []*storage.FileEntry `json:"toDeleteTarget"`
	UpdatesSource int                  `json:"updatesSource"`
	UpdatesTarget int                  `json:"updatesTarget"`
	// Conflicts lists keys changed on both sides with identical timestamps.
	Conflicts []string `json:"conflicts,omitempty"`
}

// Empty reports whether nothing needs to be executed.
func (o *OperationSet) Empty() bool {
	return len(o.UploadSource) == 0 && len(o.UploadTarget) == 0 &&
		len(o.DeleteSource) == 0 && len(o.DeleteTarget) == 0
}

// Total counts every planned operation.
func (o *OperationSet) Total() int {
	return len(o.UploadSource) + len(o.UploadTarget) + len(o.DeleteSource) + len(o.DeleteTarget)
}

// SafetyThresholdError aborts a cycle that would delete too many objects.
type SafetyThresholdError struct {
	Side  string
	Count int
	Max   int
}

func (e *SafetyThresholdError) Error() string {
	return fmt.Sprintf("refusing to delete %d objects from %s (limit %d)", e.Count, e.Side, e.Max)
}

// CheckDeletionLimit fails when either side would lose more than max
// objects. A negative max disables the check.
func (o *OperationSet) CheckDeletionLimit(max int) error {
	if max < 0 {
		return nil
	}
	if n := len(o.DeleteTarget); n > max {
		return &SafetyThresholdError{Side: "target", Count: n, Max: max}
	}
	if n := len(o.DeleteSource); n > max {
		return &SafetyThresholdError{Side: "source", Count: n, Max: max}
	}
	return nil
}
