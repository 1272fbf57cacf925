package repository

import (
	"context"
	"errors"

	"github.com/draftline/draftline/internal/domain"
	"gorm.io/gorm"
)

// WorkItemRepository handles the work-item sets a job iterates over.
type WorkItemRepository struct {
	db *gorm.DB
}

// NewWorkItemRepository creates a new WorkItemRepository.
func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// BulkCreate inserts a batch of work items.
func (r *WorkItemRepository) BulkCreate(ctx context.Context, items []domain.WorkItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// GetByID retrieves a work item by its ID.
// Returns domain.ErrNotFound if no item exists.
func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	var item domain.WorkItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByPhase retrieves the work-item set for a project and phase in
// insertion order. The set is treated as immutable for the duration of a job.
func (r *WorkItemRepository) ListByPhase(ctx context.Context, projectID string, phase domain.Phase) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND phase = ?", projectID, phase).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountByPhase counts work items for a project and phase.
func (r *WorkItemRepository) CountByPhase(ctx context.Context, projectID string, phase domain.Phase) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.WorkItem{}).
		Where("project_id = ? AND phase = ?", projectID, phase).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
