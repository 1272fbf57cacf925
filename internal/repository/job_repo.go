package repository

import (
	"context"
	"errors"
	"time"

	"github.com/draftline/draftline/internal/domain"
	"gorm.io/gorm"
)

// JobRepository persists generation job history rows.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job row in the running state.
func (r *JobRepository) Create(ctx context.Context, job *domain.GenerationJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Finalize writes the terminal state and counters for a finished job.
func (r *JobRepository) Finalize(ctx context.Context, id string, status domain.JobLifecycle, completed, failed, skipped int, errorLog string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"completed_items": completed,
			"failed_items":    failed,
			"skipped_items":   skipped,
			"error_log":       errorLog,
			"completed_at":    &now,
		}).Error
}

// GetByID retrieves a job row by its ID.
// Returns domain.ErrNotFound if no job exists.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListByPhase retrieves job history for a project and phase, newest first.
func (r *JobRepository) ListByPhase(ctx context.Context, projectID string, phase domain.Phase, limit int) ([]domain.GenerationJob, error) {
	var jobs []domain.GenerationJob
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND phase = ?", projectID, phase).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
