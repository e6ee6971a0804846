package reconcile

import (
	"errors"

	"github.com/carboneio/sclone/core/storage"
)

// ComputeSync diffs the three mappings of state and returns the operations
// that make both sides converge. The mappings are updated in place to the
// state expected once every operation succeeds.
//
// The target pass always runs before the source pass, and each pass works
// on a copy of its mapping's keys taken when the pass starts.
func ComputeSync(state *State, policy Policy) (*OperationSet, error) {
	if _, err := ParseMode(string(policy.Mode)); err != nil {
		return nil, err
	}
	if state == nil || state.Source == nil || state.Target == nil || state.Cache == nil {
		return nil, errors.New("reconcile: state mappings must not be nil")
	}
	tie := policy.TieBreak
	if tie == "" {
		tie = TieNone
	}

	ops := &OperationSet{}
	bi := policy.Mode == Bidirectional

	for _, key := range state.Target.Keys() {
		tgt, _ := state.Target.Get(key)
		src, inSource := state.Source.Get(key)
		_, inCache := state.Cache.Get(key)

		if !bi {
			if !inSource && policy.Deletion {
				state.Target.Delete(key)
				ops.DeleteTarget = append(ops.DeleteTarget, tgt)
			}
			continue
		}

		switch {
		case !inSource && inCache && policy.Deletion:
			// Deleted from the source since the last cycle.
			state.Target.Delete(key)
			state.Cache.Delete(key)
			ops.DeleteTarget = append(ops.DeleteTarget, tgt)
		case !inSource:
			// New on the target, or resurrected when deletion is off.
			state.Source.Set(key, tgt)
			state.Cache.Set(key, tgt)
			ops.UploadSource = append(ops.UploadSource, tgt)
		case src.MD5 == tgt.MD5:
		case tgt.LastModified > src.LastModified:
			overwrite(state, state.Source, key, tgt)
			ops.UploadSource = append(ops.UploadSource, tgt)
			ops.UpdatesSource++
		case tgt.LastModified == src.LastModified:
			ops.Conflicts = append(ops.Conflicts, key)
			switch resolveTie(tie, src, tgt) {
			case tgt:
				overwrite(state, state.Source, key, tgt)
				ops.UploadSource = append(ops.UploadSource, tgt)
				ops.UpdatesSource++
			case src:
				overwrite(state, state.Target, key, src)
				ops.UploadTarget = append(ops.UploadTarget, src)
				ops.UpdatesTarget++
			}
		}
	}

	for _, key := range state.Source.Keys() {
		src, _ := state.Source.Get(key)
		tgt, inTarget := state.Target.Get(key)
		_, inCache := state.Cache.Get(key)

		switch {
		case bi && !inTarget && inCache && policy.Deletion:
			state.Source.Delete(key)
			state.Cache.Delete(key)
			ops.DeleteSource = append(ops.DeleteSource, src)
		case !inTarget:
			state.Target.Set(key, src)
			state.Cache.Set(key, src)
			ops.UploadTarget = append(ops.UploadTarget, src)
		case src.MD5 == tgt.MD5:
		case !bi || src.LastModified > tgt.LastModified:
			overwrite(state, state.Target, key, src)
			ops.UploadTarget = append(ops.UploadTarget, src)
			ops.UpdatesTarget++
		}
	}

	return ops, nil
}

// overwrite replaces key on one side and in the cache with the winning entry.
func overwrite(state *State, side *Index, key string, winner *storage.FileEntry) {
	winner.Updated = true
	side.Set(key, winner)
	state.Cache.Set(key, winner)
}

// resolveTie returns the winning entry, or nil when the tie is left alone.
func resolveTie(rule TieBreak, src, tgt *storage.FileEntry) *storage.FileEntry {
	switch rule {
	case TieSource:
		return src
	case TieTarget:
		return tgt
	case TieHash:
		if tgt.MD5 > src.MD5 {
			return tgt
		}
		return src
	default:
		return nil
	}
}
