package repository

import (
	"context"
	"errors"

	"github.com/draftline/draftline/internal/domain"
	"gorm.io/gorm"
)

// RecordRepository handles generation record persistence. Records are
// append-only: every successful generation inserts a new row, existing rows
// only ever change status or body, never get replaced.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new RecordRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RecordRepository: repository instance bound to db.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new generation record.
func (r *RecordRepository) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetByID retrieves a record by its ID.
// Returns domain.ErrNotFound if no record exists.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*domain.GenerationRecord, error) {
	var rec domain.GenerationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List retrieves records for a project and phase, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - projectID: owning project.
//   - phase: onboarding phase.
//   - status: record status to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.GenerationRecord: matching records.
//   - error: non-nil if the query fails.
func (r *RecordRepository) List(ctx context.Context, projectID string, phase domain.Phase, status domain.RecordStatus, limit, offset int) ([]domain.GenerationRecord, error) {
	var recs []domain.GenerationRecord
	query := r.db.WithContext(ctx).
		Where("project_id = ? AND phase = ?", projectID, phase)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListByWorkItem retrieves the full record history for one work item, newest first.
func (r *RecordRepository) ListByWorkItem(ctx context.Context, workItemID string) ([]domain.GenerationRecord, error) {
	var recs []domain.GenerationRecord
	if err := r.db.WithContext(ctx).
		Where("work_item_id = ?", workItemID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// HasAny checks whether any record exists for a work item.
func (r *RecordRepository) HasAny(ctx context.Context, workItemID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("work_item_id = ?", workItemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasTerminal checks whether an approved or rejected record exists for a work item.
func (r *RecordRepository) HasTerminal(ctx context.Context, workItemID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("work_item_id = ? AND status IN ?", workItemID,
			[]domain.RecordStatus{domain.RecordStatusApproved, domain.RecordStatusRejected}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Transition moves a record from pending to the target status. The WHERE
// guard on the current status makes the update safe under concurrent
// approvals: at most one caller observes a row change.
// Returns the number of rows affected (0 when the record was not pending).
func (r *RecordRepository) Transition(ctx context.Context, id string, to domain.RecordStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("id = ? AND status = ?", id, domain.RecordStatusPending).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// UpdateBody edits the body of a pending record in place. The original_body
// column is never touched.
// Returns the number of rows affected (0 when the record was not pending).
func (r *RecordRepository) UpdateBody(ctx context.Context, id string, body string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("id = ? AND status = ?", id, domain.RecordStatusPending).
		Update("body", body)
	return res.RowsAffected, res.Error
}

// BulkTransition moves all pending records for a project and phase to the
// target status. Records already in a terminal state are untouched.
// Returns the number of records affected.
func (r *RecordRepository) BulkTransition(ctx context.Context, projectID string, phase domain.Phase, to domain.RecordStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("project_id = ? AND phase = ? AND status = ?", projectID, phase, domain.RecordStatusPending).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// CountByStatus counts records for a project and phase by status.
func (r *RecordRepository) CountByStatus(ctx context.Context, projectID string, phase domain.Phase, status domain.RecordStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.GenerationRecord{}).
		Where("project_id = ? AND phase = ? AND status = ?", projectID, phase, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
