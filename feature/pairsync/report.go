package pairsync

import (
	"errors"
	"time"

	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/feature/history"

	"github.com/google/uuid"
)

// Status is the outcome of a cycle.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
	StatusSkipped             Status = "skipped"
	StatusDryRun              Status = "dry_run"
)

// Report summarizes one cycle.
type Report struct {
	CycleID    string               `json:"cycle_id"`
	Pair       string               `json:"pair"`
	Mode       reconcile.Mode       `json:"mode"`
	Stage      Stage                `json:"stage"`
	Status     Status               `json:"status"`
	Error      string               `json:"error,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Duration   time.Duration        `json:"-"`
	DurationMs int64                `json:"duration_ms"`
	Planned    reconcile.PlanCounts `json:"planned"`
	Uploaded   int                  `json:"uploaded"`
	Deleted    int                  `json:"deleted"`
	Failed     int                  `json:"failed"`
	Bytes      int64                `json:"bytes"`
	PlanPath   string               `json:"plan_path,omitempty"`
}

func newReport(pair Pair) *Report {
	return &Report{
		CycleID:   uuid.NewString(),
		Pair:      pair.Name,
		Mode:      pair.Policy.Mode,
		StartedAt: time.Now(),
	}
}

func (r *Report) finish(err error, dryRun bool) {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
	r.DurationMs = r.Duration.Milliseconds()

	switch {
	case errors.Is(err, ErrAlreadyRunning):
		r.Status = StatusSkipped
	case err != nil:
		r.Status = StatusFailed
		r.Error = err.Error()
	case dryRun:
		r.Status = StatusDryRun
	case r.Failed > 0:
		r.Status = StatusCompletedWithErrors
	default:
		r.Status = StatusOK
	}
}

func (r *Report) run() *history.Run {
	return &history.Run{
		CycleID:             r.CycleID,
		Pair:                r.Pair,
		Mode:                string(r.Mode),
		Status:              string(r.Status),
		Stage:               string(r.Stage),
		Error:               r.Error,
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
		DurationMs:          r.DurationMs,
		PlannedUploadSource: r.Planned.UploadSource,
		PlannedUploadTarget: r.Planned.UploadTarget,
		PlannedDeleteSource: r.Planned.DeleteSource,
		PlannedDeleteTarget: r.Planned.DeleteTarget,
		Conflicts:           r.Planned.Conflicts,
		Uploaded:            r.Uploaded,
		Deleted:             r.Deleted,
		Failed:              r.Failed,
		Bytes:               r.Bytes,
	}
}
