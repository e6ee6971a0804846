// Package reconcile decides how two object stores converge.
//
// A State holds three insertion-ordered mappings of join key to entry:
// what is on the source, what is on the target, and what both sides held
// after the last successful cycle (the cache). ComputeSync walks the target
// mapping, then the source mapping, and returns an OperationSet of uploads
// and deletions per side while mutating the mappings into the state the
// pair will be in once those operations succeed.
//
// # Modes
//
//   - unidirectional: the source is authoritative. Changed content is
//     always pushed to the target; target-only objects are deleted when
//     deletion is enabled.
//   - bidirectional: both sides are peers. An object missing on one side is
//     a deletion if the cache knew it, otherwise a new object. When both
//     sides changed, the newer modification time wins; equal times are
//     reported as conflicts and settled by the TieBreak rule.
//
// # Safety
//
// OperationSet.CheckDeletionLimit refuses plans that delete too many
// objects, so a broken listing cannot empty a bucket.
//
// # Usage
//
//	state := reconcile.NewState(reconcile.IndexOf(src), reconcile.IndexOf(dst), cache)
//	ops, err := reconcile.ComputeSync(state, reconcile.Policy{Mode: reconcile.Bidirectional, Deletion: true})
//	if err := ops.CheckDeletionLimit(100); err != nil { ... }
package reconcile
