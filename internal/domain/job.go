package domain

import "time"

// JobLifecycle represents the coarse state of a generation job.
// Values include LifecycleIdle, LifecycleRunning, LifecycleComplete, and LifecycleFailed.
type JobLifecycle string

const (
	LifecycleIdle     JobLifecycle = "idle"
	LifecycleRunning  JobLifecycle = "running"
	LifecycleComplete JobLifecycle = "complete"
	LifecycleFailed   JobLifecycle = "failed"
)

// Done reports whether the lifecycle is terminal and pollers should stop.
func (l JobLifecycle) Done() bool {
	return l == LifecycleComplete || l == LifecycleFailed
}

// GenerationJob is the durable history row for one orchestrator run.
// Live counters are served from the in-memory tracker while a job runs;
// this row is written at start and finalized once.
type GenerationJob struct {
	ID             string       `gorm:"type:text;primaryKey" json:"id"`
	ProjectID      string       `gorm:"type:text;not null;index:idx_jobs_scope" json:"project_id"`
	Phase          Phase        `gorm:"type:text;not null;index:idx_jobs_scope" json:"phase"`
	Status         JobLifecycle `gorm:"type:text;default:running" json:"status"`
	TotalItems     int          `gorm:"default:0" json:"total_items"`
	CompletedItems int          `gorm:"default:0" json:"completed_items"`
	FailedItems    int          `gorm:"default:0" json:"failed_items"`
	SkippedItems   int          `gorm:"default:0" json:"skipped_items"`
	ErrorLog       string       `json:"error_log,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName returns the database table name for GenerationJob.
func (GenerationJob) TableName() string {
	return "generation_jobs"
}
