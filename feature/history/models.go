package history

import "time"

// Run is the persisted summary of one sync cycle.
type Run struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CycleID    string    `gorm:"size:36;uniqueIndex" json:"cycle_id"`
	Pair       string    `gorm:"size:191;index" json:"pair"`
	Mode       string    `gorm:"size:32" json:"mode"`
	Status     string    `gorm:"size:32" json:"status"`
	Stage      string    `gorm:"size:32" json:"stage"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`

	PlannedUploadSource int `json:"planned_upload_source"`
	PlannedUploadTarget int `json:"planned_upload_target"`
	PlannedDeleteSource int `json:"planned_delete_source"`
	PlannedDeleteTarget int `json:"planned_delete_target"`
	Conflicts           int `json:"conflicts"`

	Uploaded int   `json:"uploaded"`
	Deleted  int   `json:"deleted"`
	Failed   int   `json:"failed"`
	Bytes    int64 `json:"bytes"`
}

// TableName overrides the table name used by GORM.
func (Run) TableName() string {
	return "sync_runs"
}
