package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/events"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/progress"
	"github.com/draftline/draftline/internal/prompts"
	"github.com/draftline/draftline/internal/repository"
	"github.com/google/uuid"
)

// Orchestrator runs generation jobs: it walks a phase's work-item set, calls
// the generator once per item, persists each result as a pending draft, and
// keeps the shared progress state current. One bad item never sinks the run.
type Orchestrator struct {
	projects  *repository.ProjectRepository
	items     *repository.WorkItemRepository
	records   *repository.RecordRepository
	jobs      *repository.JobRepository
	generator Generator
	strategy  *Strategy
	tracker   *progress.Tracker
	bus       *events.Bus
	logger    *logger.Logger
	workers   int
	timeout   time.Duration
}

// OrchestratorConfig holds configuration for the orchestrator.
type OrchestratorConfig struct {
	Workers     int
	ItemTimeout time.Duration
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	projects *repository.ProjectRepository,
	items *repository.WorkItemRepository,
	records *repository.RecordRepository,
	jobs *repository.JobRepository,
	generator Generator,
	strategy *Strategy,
	tracker *progress.Tracker,
	bus *events.Bus,
	log *logger.Logger,
	cfg *OrchestratorConfig,
) *Orchestrator {
	workers := 1
	timeout := 90 * time.Second
	if cfg != nil {
		if cfg.Workers > 0 {
			workers = cfg.Workers
		}
		if cfg.ItemTimeout > 0 {
			timeout = cfg.ItemTimeout
		}
	}
	return &Orchestrator{
		projects:  projects,
		items:     items,
		records:   records,
		jobs:      jobs,
		generator: generator,
		strategy:  strategy,
		tracker:   tracker,
		bus:       bus,
		logger:    log,
		workers:   workers,
		timeout:   timeout,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (o *Orchestrator) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return o.logger
}

// RunOptions control item selection for one run.
type RunOptions struct {
	// Force processes every item regardless of existing records.
	Force bool
	// SkipExisting skips items that already have any record.
	SkipExisting bool
	// IncludeProcessed also re-processes items whose latest decision is
	// terminal; by default those are skipped.
	IncludeProcessed bool
	// BatchSize limits the run to the first N items of the set; 0 means all.
	BatchSize int
	// Workers overrides the configured pool size for this run; 0 keeps it.
	Workers int
}

// StartResult is returned synchronously when a job is accepted.
type StartResult struct {
	JobID      string    `json:"job_id"`
	Total      int       `json:"total"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Start performs pre-flight checks, claims the (project, phase) key, and
// launches the run asynchronously. It returns as soon as the job is
// accepted; callers observe progress through the tracker.
//
// Errors: *domain.JobFatalError when the project does not exist,
// domain.ErrConflict when a job is already running for the key.
func (o *Orchestrator) Start(ctx context.Context, projectID string, phase domain.Phase, opts RunOptions) (*StartResult, error) {
	key := progress.Key(projectID, phase)
	jobID := uuid.New().String()

	// Pre-flight: the project must exist before any item is touched.
	project, err := o.projects.GetByID(ctx, projectID)
	if err != nil {
		fatal := &domain.JobFatalError{Reason: "project configuration missing", Err: err}
		o.tracker.SetFailed(key, jobID, projectID, phase, fatal.Error())
		return nil, fatal
	}

	items, err := o.items.ListByPhase(ctx, projectID, phase)
	if err != nil {
		fatal := &domain.JobFatalError{Reason: "failed to load work items", Err: err}
		o.tracker.SetFailed(key, jobID, projectID, phase, fatal.Error())
		return nil, fatal
	}
	if opts.BatchSize > 0 && opts.BatchSize < len(items) {
		items = items[:opts.BatchSize]
	}

	// Total is fixed here; the claim fails with ErrConflict while a job runs.
	state, err := o.tracker.TryStart(key, jobID, projectID, phase, len(items))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	jobRow := &domain.GenerationJob{
		ID:         jobID,
		ProjectID:  projectID,
		Phase:      phase,
		Status:     domain.LifecycleRunning,
		TotalItems: len(items),
		StartedAt:  &now,
	}
	if err := o.jobs.Create(ctx, jobRow); err != nil {
		o.tracker.SetFailed(key, jobID, projectID, phase, err.Error())
		return nil, &domain.JobFatalError{Reason: "failed to persist job", Err: err}
	}

	// Detach from the request context: the trigger call returns immediately
	// and must not cancel the run.
	runCtx := logger.WithFields(context.Background(), logger.Fields{
		logger.FieldJobID:     jobID,
		logger.FieldProjectID: projectID,
		logger.FieldPhase:     string(phase),
		logger.FieldComponent: "orchestrator",
	})

	go o.run(runCtx, key, jobID, project, items, opts)

	return &StartResult{
		JobID:      jobID,
		Total:      state.Total,
		AcceptedAt: now,
	}, nil
}

type itemResult struct {
	itemRef string
	skipped bool
	err     error
}

// errSkipProcessed is a sentinel to indicate an already-processed skip
var errSkipProcessed = fmt.Errorf("skipped: already processed")

func (o *Orchestrator) run(ctx context.Context, key, jobID string, project *domain.Project, items []domain.WorkItem, opts RunOptions) {
	start := time.Now()

	o.log(ctx).WithFields(logger.Fields{
		"total":   len(items),
		"force":   opts.Force,
		"workers": o.poolSize(opts),
	}).Info("Starting generation job")

	itemsChan := make(chan domain.WorkItem, o.poolSize(opts)*2)
	resultsChan := make(chan *itemResult, o.poolSize(opts)*2)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < o.poolSize(opts); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.worker(ctx, jobID, project, itemsChan, resultsChan, opts)
		}()
	}

	// Collector owns the counters; workers never touch the tracker directly.
	done := make(chan struct{})
	go func() {
		for result := range resultsChan {
			state, _ := o.tracker.Update(key, func(s *progress.State) {
				switch {
				case result.skipped:
					s.Skipped++
				case result.err != nil:
					s.Failed++
				default:
					s.Completed++
				}
			})
			if result.err != nil {
				o.log(ctx).WithField("item_ref", result.itemRef).
					WithError(result.err).Error("Failed to process item")
			}
			o.bus.Publish(project.ID, events.Event{Type: events.TypeProgress, Data: state})
		}
		close(done)
	}()

	for _, item := range items {
		itemsChan <- item
	}
	close(itemsChan)
	wg.Wait()

	close(resultsChan)
	<-done

	final, _ := o.tracker.Finish(key, domain.LifecycleComplete, "")
	if err := o.jobs.Finalize(ctx, jobID, domain.LifecycleComplete,
		final.Completed, final.Failed, final.Skipped, ""); err != nil {
		o.log(ctx).WithError(err).Error("Failed to finalize job row")
	}
	o.bus.Publish(project.ID, events.Event{Type: events.TypeProgress, Data: final})

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      final.Completed,
	}).Info(ctx, "Generation job completed: total=%d, completed=%d, skipped=%d, failed=%d",
		final.Total, final.Completed, final.Skipped, final.Failed)
}

func (o *Orchestrator) poolSize(opts RunOptions) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return o.workers
}

func (o *Orchestrator) worker(ctx context.Context, jobID string, project *domain.Project, items <-chan domain.WorkItem, results chan<- *itemResult, opts RunOptions) {
	for item := range items {
		result := &itemResult{itemRef: item.Ref}

		if err := o.processItem(ctx, jobID, project, &item, opts); err != nil {
			if err == errSkipProcessed {
				result.skipped = true
			} else {
				result.err = err
			}
		}

		results <- result
	}
}

func (o *Orchestrator) processItem(ctx context.Context, jobID string, project *domain.Project, item *domain.WorkItem, opts RunOptions) error {
	// Skip checks are bypassed entirely under force.
	if !opts.Force {
		if opts.SkipExisting {
			exists, err := o.records.HasAny(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("failed to check existing records: %w", err)
			}
			if exists {
				return errSkipProcessed
			}
		}
		if !opts.IncludeProcessed {
			terminal, err := o.records.HasTerminal(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("failed to check processed records: %w", err)
			}
			if terminal {
				return errSkipProcessed
			}
		}
	}

	approach := o.strategy.Select(project.Promotional)

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	text, err := o.generator.Generate(genCtx, GenerateRequest{
		System: prompts.SystemPrompt(item.Phase),
		Prompt: prompts.UserPrompt(item.Phase, approach, project.BrandVoice, item.Ref, item.Payload),
	})
	cancel()
	if err != nil {
		return err
	}

	// Always a new record: prior records for the item are never overwritten.
	rec := &domain.GenerationRecord{
		ID:           uuid.New().String(),
		WorkItemID:   item.ID,
		ProjectID:    project.ID,
		Phase:        item.Phase,
		Body:         text,
		OriginalBody: text,
		Approach:     approach,
		Status:       domain.RecordStatusPending,
		Metadata: domain.JSONMap{
			"job_id": jobID,
			"model":  o.generator.Model(),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := o.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	o.bus.Publish(project.ID, events.Event{Type: events.TypeRecordCreated, Data: rec})

	return nil
}
