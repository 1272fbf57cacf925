package service

import (
	"context"
	"fmt"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/repository"
)

// ApprovalService turns generated drafts into accepted or rejected facts
// under explicit human decision.
//
// State machine per record:
//
//	pending --approve--> approved
//	pending --reject---> rejected
//	pending --modify---> pending (body changes, status unchanged)
//
// approved and rejected are terminal; re-applying the same decision is a
// no-op, crossing decisions is a conflict. Re-generation for the same work
// item creates a new record rather than resurrecting a terminal one.
type ApprovalService struct {
	records *repository.RecordRepository
	logger  *logger.Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(records *repository.RecordRepository, log *logger.Logger) *ApprovalService {
	return &ApprovalService{
		records: records,
		logger:  log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *ApprovalService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Approve transitions a record to approved.
// Returns the record after the transition. Idempotent when already approved;
// domain.ErrNotFound for unknown records; domain.ErrConflict when rejected.
func (s *ApprovalService) Approve(ctx context.Context, recordID string) (*domain.GenerationRecord, error) {
	return s.decide(ctx, recordID, domain.RecordStatusApproved)
}

// Reject transitions a record to rejected. Rejection is a status, not
// erasure: the record stays in the store.
func (s *ApprovalService) Reject(ctx context.Context, recordID string) (*domain.GenerationRecord, error) {
	return s.decide(ctx, recordID, domain.RecordStatusRejected)
}

func (s *ApprovalService) decide(ctx context.Context, recordID string, to domain.RecordStatus) (*domain.GenerationRecord, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if rec.Status == to {
		// Re-applying the same decision is a no-op.
		return rec, nil
	}
	if rec.Status.Terminal() {
		return nil, fmt.Errorf("record %s is already %s: %w", recordID, rec.Status, domain.ErrConflict)
	}

	affected, err := s.records.Transition(ctx, recordID, to)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost a race against a concurrent decision; re-read and re-judge.
		rec, err = s.records.GetByID(ctx, recordID)
		if err != nil {
			return nil, err
		}
		if rec.Status == to {
			return rec, nil
		}
		return nil, fmt.Errorf("record %s is already %s: %w", recordID, rec.Status, domain.ErrConflict)
	}

	s.log(ctx).WithFields(logger.Fields{
		"record_id": recordID,
		"status":    to,
	}).Info("Record decision applied")

	rec.Status = to
	return rec, nil
}

// Modify edits the body of a pending record in place. The status and the
// original body are preserved.
// Returns domain.ErrNotFound for unknown records and domain.ErrConflict when
// the record is no longer pending.
func (s *ApprovalService) Modify(ctx context.Context, recordID, body string) (*domain.GenerationRecord, error) {
	if body == "" {
		return nil, &domain.ValidationError{Field: "body", Message: "must not be empty"}
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.RecordStatusPending {
		return nil, fmt.Errorf("record %s is %s, only pending records can be modified: %w",
			recordID, rec.Status, domain.ErrConflict)
	}

	affected, err := s.records.UpdateBody(ctx, recordID, body)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("record %s left pending state during modify: %w", recordID, domain.ErrConflict)
	}

	rec.Body = body
	return rec, nil
}

// BulkApprove approves all pending records for a project and phase.
// Terminal records are untouched. Returns the number of records affected.
func (s *ApprovalService) BulkApprove(ctx context.Context, projectID string, phase domain.Phase) (int64, error) {
	return s.bulkDecide(ctx, projectID, phase, domain.RecordStatusApproved)
}

// BulkReject rejects all pending records for a project and phase.
func (s *ApprovalService) BulkReject(ctx context.Context, projectID string, phase domain.Phase) (int64, error) {
	return s.bulkDecide(ctx, projectID, phase, domain.RecordStatusRejected)
}

func (s *ApprovalService) bulkDecide(ctx context.Context, projectID string, phase domain.Phase, to domain.RecordStatus) (int64, error) {
	affected, err := s.records.BulkTransition(ctx, projectID, phase, to)
	if err != nil {
		return 0, err
	}

	logger.With(logger.Fields{
		logger.FieldCount: affected,
	}).Info(ctx, "Bulk decision applied: project=%s, phase=%s, status=%s", projectID, phase, to)

	return affected, nil
}

// List retrieves records for review, newest first.
func (s *ApprovalService) List(ctx context.Context, projectID string, phase domain.Phase, status domain.RecordStatus, limit, offset int) ([]domain.GenerationRecord, error) {
	return s.records.List(ctx, projectID, phase, status, limit, offset)
}
