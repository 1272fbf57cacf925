// Package scheduler wires optional cron-triggered generation runs. The
// scheduler is just another trigger caller: it goes through the same
// orchestrator entry point and backs off when a run is already active.
package scheduler

import (
	"context"
	"errors"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/service"
	"github.com/robfig/cron/v3"
)

// Scheduler runs configured generation triggers on cron expressions.
type Scheduler struct {
	cron   *cron.Cron
	orch   *service.Orchestrator
	logger *logger.Logger
}

// New creates a Scheduler.
func New(orch *service.Orchestrator, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		orch:   orch,
		logger: log,
	}
}

// Add registers a scheduled run for a project and phase.
// Parameters:
//   - projectID: project to trigger.
//   - phase: phase to generate; validated here.
//   - spec: standard 5-field cron expression.
// Returns:
//   - error: non-nil if the phase or expression is invalid.
func (s *Scheduler) Add(projectID string, phase string, spec string) error {
	parsed, err := domain.ParsePhase(phase)
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(spec, func() {
		ctx := logger.WithFields(context.Background(), logger.Fields{
			logger.FieldProjectID: projectID,
			logger.FieldPhase:     phase,
			logger.FieldComponent: "scheduler",
		})

		result, err := s.orch.Start(ctx, projectID, parsed, service.RunOptions{})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				logger.CtxDebug(ctx, "Scheduled run skipped: job already running")
				return
			}
			logger.CtxError(ctx, "Scheduled run failed to start: %v", err)
			return
		}
		logger.CtxInfo(ctx, "Scheduled run accepted: job_id=%s, total=%d", result.JobID, result.Total)
	})
	return err
}

// Start begins executing registered schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler; running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
