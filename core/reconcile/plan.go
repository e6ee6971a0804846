package reconcile

import (
	"github.com/carboneio/sclone/core/artifact"
)

// Plan is the artifact written for a dry run or when plan logging is on.
type Plan struct {
	Pair   string        `json:"pair"`
	Mode   Mode          `json:"mode"`
	Delete bool          `json:"delete"`
	Counts PlanCounts    `json:"counts"`
	Ops    *OperationSet `json:"operations"`
}

// PlanCounts summarizes an operation set.
type PlanCounts struct {
	UploadSource int `json:"uploadSource"`
	UploadTarget int `json:"uploadTarget"`
	DeleteSource int `json:"deleteSource"`
	DeleteTarget int `json:"deleteTarget"`
	Conflicts    int `json:"conflicts"`
}

// Summarize counts the operations of ops.
func Summarize(ops *OperationSet) PlanCounts {
	return PlanCounts{
		UploadSource: len(ops.UploadSource),
		UploadTarget: len(ops.UploadTarget),
		DeleteSource: len(ops.DeleteSource),
		DeleteTarget: len(ops.DeleteTarget),
		Conflicts:    len(ops.Conflicts),
	}
}

// WritePlan stores ops as a plan artifact in dir and returns its path.
func WritePlan(dir, pair string, policy Policy, ops *OperationSet) (string, error) {
	return artifact.Write(dir, pair, artifact.KindPlan, Plan{
		Pair:   pair,
		Mode:   policy.Mode,
		Delete: policy.Deletion,
		Counts: Summarize(ops),
		Ops:    ops,
	})
}
