package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftline/draftline/internal/config"
	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/repository"
)

func newApprovalEnv(t *testing.T) (*ApprovalService, *repository.RecordRepository) {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	records := repository.NewRecordRepository(db)
	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
	return NewApprovalService(records, log), records
}

func seedRecord(t *testing.T, records *repository.RecordRepository, projectID string, phase domain.Phase, status domain.RecordStatus) *domain.GenerationRecord {
	t.Helper()
	rec := &domain.GenerationRecord{
		ID:           uuid.New().String(),
		WorkItemID:   uuid.New().String(),
		ProjectID:    projectID,
		Phase:        phase,
		Body:         "draft text",
		OriginalBody: "draft text",
		Approach:     domain.ApproachPracticalTip,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, records.Create(context.Background(), rec))
	return rec
}

func TestApproveTransitionsPending(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusPending)

	got, err := svc.Approve(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusApproved, got.Status)

	stored, err := records.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusApproved, stored.Status)
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusApproved)

	got, err := svc.Approve(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusApproved, got.Status)
}

func TestCrossTerminalDecisionConflicts(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusRejected)

	_, err := svc.Approve(context.Background(), rec.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	// The rejected record is still there, untouched.
	stored, err := records.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusRejected, stored.Status)
}

func TestDecideUnknownRecord(t *testing.T) {
	svc, _ := newApprovalEnv(t)

	_, err := svc.Approve(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Reject(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModifyEditsPendingBodyOnly(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseComments, domain.RecordStatusPending)

	got, err := svc.Modify(context.Background(), rec.ID, "edited text")
	require.NoError(t, err)
	require.Equal(t, "edited text", got.Body)
	require.Equal(t, domain.RecordStatusPending, got.Status)

	stored, err := records.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, "edited text", stored.Body)
	require.Equal(t, "draft text", stored.OriginalBody)
}

func TestModifyRejectsEmptyBody(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseComments, domain.RecordStatusPending)

	_, err := svc.Modify(context.Background(), rec.ID, "")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestModifyTerminalRecordConflicts(t *testing.T) {
	svc, records := newApprovalEnv(t)
	rec := seedRecord(t, records, "p1", domain.PhaseComments, domain.RecordStatusApproved)

	_, err := svc.Modify(context.Background(), rec.ID, "edited text")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestBulkApproveOnlyTouchesPending(t *testing.T) {
	svc, records := newApprovalEnv(t)
	for i := 0; i < 3; i++ {
		seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusPending)
	}
	rejected := seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusRejected)
	otherPhase := seedRecord(t, records, "p1", domain.PhaseLabeling, domain.RecordStatusPending)

	affected, err := svc.BulkApprove(context.Background(), "p1", domain.PhaseKeywords)
	require.NoError(t, err)
	require.EqualValues(t, 3, affected)

	// The rejected record and the other phase are untouched.
	stored, err := records.GetByID(context.Background(), rejected.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusRejected, stored.Status)

	stored, err = records.GetByID(context.Background(), otherPhase.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RecordStatusPending, stored.Status)

	// A second pass finds nothing pending.
	affected, err = svc.BulkApprove(context.Background(), "p1", domain.PhaseKeywords)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, records := newApprovalEnv(t)
	seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusPending)
	seedRecord(t, records, "p1", domain.PhaseKeywords, domain.RecordStatusApproved)

	pending, err := svc.List(context.Background(), "p1", domain.PhaseKeywords, domain.RecordStatusPending, 50, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	all, err := svc.List(context.Background(), "p1", domain.PhaseKeywords, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
