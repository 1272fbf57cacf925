package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftline/draftline/internal/config"
	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/events"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/progress"
	"github.com/draftline/draftline/internal/repository"
)

// fakeGenerator returns canned text and can fail selected refs.
type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	failRefs map[string]bool
}

func (f *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	for ref := range f.failRefs {
		// The user prompt always carries the item ref.
		if strings.Contains(req.Prompt, ref) {
			return "", &domain.GenerationError{Err: fmt.Errorf("backend refused %s", ref)}
		}
	}
	return "generated draft", nil
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	orch     *Orchestrator
	tracker  *progress.Tracker
	bus      *events.Bus
	projects *repository.ProjectRepository
	items    *repository.WorkItemRepository
	records  *repository.RecordRepository
	jobs     *repository.JobRepository
	gen      *fakeGenerator
}

func newTestEnv(t *testing.T, gen *fakeGenerator) *testEnv {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
	tracker := progress.NewTracker()
	bus := events.NewBus()

	env := &testEnv{
		tracker:  tracker,
		bus:      bus,
		projects: repository.NewProjectRepository(db),
		items:    repository.NewWorkItemRepository(db),
		records:  repository.NewRecordRepository(db),
		jobs:     repository.NewJobRepository(db),
		gen:      gen,
	}
	env.orch = NewOrchestrator(
		env.projects, env.items, env.records, env.jobs,
		gen, NewStrategy(1), tracker, bus, log,
		&OrchestratorConfig{Workers: 2, ItemTimeout: 5 * time.Second},
	)
	return env
}

func (e *testEnv) seedProject(t *testing.T, promotional bool) *domain.Project {
	t.Helper()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        "acme",
		BrandVoice:  "friendly, direct",
		Promotional: promotional,
	}
	require.NoError(t, e.projects.Create(context.Background(), p))
	return p
}

func (e *testEnv) seedItems(t *testing.T, projectID string, phase domain.Phase, refs ...string) []domain.WorkItem {
	t.Helper()
	items := make([]domain.WorkItem, 0, len(refs))
	for _, ref := range refs {
		items = append(items, domain.WorkItem{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Phase:     phase,
			Ref:       ref,
			Payload:   "payload for " + ref,
		})
	}
	require.NoError(t, e.items.BulkCreate(context.Background(), items))
	return items
}

// waitDone polls the tracker until the job reaches a terminal lifecycle.
func (e *testEnv) waitDone(t *testing.T, key string) progress.State {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		state, ok := e.tracker.Snapshot(key)
		if ok && state.Lifecycle.Done() {
			return state
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return progress.State{}
}

func TestStartRunsFullBatch(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1", "kw-2", "kw-3", "kw-4", "kw-5")

	result, err := env.orch.Start(context.Background(), project.ID, domain.PhaseKeywords, RunOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, result.JobID)
	require.Equal(t, 5, result.Total)

	final := env.waitDone(t, progress.Key(project.ID, domain.PhaseKeywords))
	require.Equal(t, domain.LifecycleComplete, final.Lifecycle)
	require.Equal(t, 5, final.Completed)
	require.Zero(t, final.Failed)
	require.Zero(t, final.Skipped)

	// Every item got a pending draft carrying job provenance.
	records, err := env.records.List(context.Background(), project.ID, domain.PhaseKeywords, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for _, rec := range records {
		require.Equal(t, domain.RecordStatusPending, rec.Status)
		require.Equal(t, "generated draft", rec.Body)
		require.Equal(t, rec.Body, rec.OriginalBody)
		require.Equal(t, result.JobID, rec.Metadata["job_id"])
		require.Equal(t, "fake-model", rec.Metadata["model"])
	}

	// The durable job row agrees with the tracker.
	job, err := env.jobs.GetByID(context.Background(), result.JobID)
	require.NoError(t, err)
	require.Equal(t, domain.LifecycleComplete, job.Status)
	require.Equal(t, 5, job.TotalItems)
	require.Equal(t, 5, job.CompletedItems)
}

func TestFailedItemDoesNotSinkRun(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{failRefs: map[string]bool{"kw-3": true}})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1", "kw-2", "kw-3", "kw-4", "kw-5")

	_, err := env.orch.Start(context.Background(), project.ID, domain.PhaseKeywords, RunOptions{})
	require.NoError(t, err)

	final := env.waitDone(t, progress.Key(project.ID, domain.PhaseKeywords))
	require.Equal(t, domain.LifecycleComplete, final.Lifecycle)
	require.Equal(t, 4, final.Completed)
	require.Equal(t, 1, final.Failed)
	require.Equal(t, final.Total, final.Completed+final.Failed+final.Skipped)

	records, err := env.records.List(context.Background(), project.ID, domain.PhaseKeywords, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, records, 4)
}

func TestUnknownProjectFailsPreflight(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})

	_, err := env.orch.Start(context.Background(), "ghost", domain.PhaseLabeling, RunOptions{})
	require.Error(t, err)

	var fatal *domain.JobFatalError
	require.ErrorAs(t, err, &fatal)

	state, ok := env.tracker.Snapshot(progress.Key("ghost", domain.PhaseLabeling))
	require.True(t, ok)
	require.Equal(t, domain.LifecycleFailed, state.Lifecycle)
	require.Zero(t, env.gen.callCount())
}

func TestSecondTriggerConflictsWhileRunning(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseComments, "c-1")

	key := progress.Key(project.ID, domain.PhaseComments)
	_, err := env.tracker.TryStart(key, "held", project.ID, domain.PhaseComments, 1)
	require.NoError(t, err)

	_, err = env.orch.Start(context.Background(), project.ID, domain.PhaseComments, RunOptions{})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRerunSkipsTerminalRecordsByDefault(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	items := env.seedItems(t, project.ID, domain.PhaseLabeling, "l-1", "l-2", "l-3")
	ctx := context.Background()
	key := progress.Key(project.ID, domain.PhaseLabeling)

	_, err := env.orch.Start(ctx, project.ID, domain.PhaseLabeling, RunOptions{})
	require.NoError(t, err)
	env.waitDone(t, key)

	// Decide the draft of the first item; the others stay pending.
	recs, err := env.records.ListByWorkItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, err = env.records.Transition(ctx, recs[0].ID, domain.RecordStatusApproved)
	require.NoError(t, err)

	// Default rerun re-processes pending items but not decided ones.
	_, err = env.orch.Start(ctx, project.ID, domain.PhaseLabeling, RunOptions{})
	require.NoError(t, err)
	final := env.waitDone(t, key)
	require.Equal(t, 2, final.Completed)
	require.Equal(t, 1, final.Skipped)

	// Reruns append; the decided record is untouched.
	recs, err = env.records.ListByWorkItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, domain.RecordStatusApproved, recs[0].Status)

	recs, err = env.records.ListByWorkItem(ctx, items[1].ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestSkipExistingSkipsAnyRecord(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1", "kw-2")
	ctx := context.Background()
	key := progress.Key(project.ID, domain.PhaseKeywords)

	_, err := env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{})
	require.NoError(t, err)
	env.waitDone(t, key)

	_, err = env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{SkipExisting: true})
	require.NoError(t, err)
	final := env.waitDone(t, key)
	require.Zero(t, final.Completed)
	require.Equal(t, 2, final.Skipped)
}

func TestForceBypassesSkipChecks(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	items := env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1")
	ctx := context.Background()
	key := progress.Key(project.ID, domain.PhaseKeywords)

	_, err := env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{})
	require.NoError(t, err)
	env.waitDone(t, key)

	recs, err := env.records.ListByWorkItem(ctx, items[0].ID)
	require.NoError(t, err)
	_, err = env.records.Transition(ctx, recs[0].ID, domain.RecordStatusRejected)
	require.NoError(t, err)

	_, err = env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{Force: true, SkipExisting: true})
	require.NoError(t, err)
	final := env.waitDone(t, key)
	require.Equal(t, 1, final.Completed)

	recs, err = env.records.ListByWorkItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestBatchSizeLimitsRun(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1", "kw-2", "kw-3", "kw-4")

	result, err := env.orch.Start(context.Background(), project.ID, domain.PhaseKeywords, RunOptions{BatchSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)

	final := env.waitDone(t, progress.Key(project.ID, domain.PhaseKeywords))
	require.Equal(t, 2, final.Completed)
}

func TestBatchSelectionPrecedesSkipChecks(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, false)
	env.seedItems(t, project.ID, domain.PhaseKeywords, "kw-1", "kw-2", "kw-3")
	ctx := context.Background()
	key := progress.Key(project.ID, domain.PhaseKeywords)

	// First pass generates a record for every item.
	_, err := env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{})
	require.NoError(t, err)
	env.waitDone(t, key)

	// The batch is cut from the full set before skip checks run, so a rerun
	// over already-covered items is all skips, not a reach for fresh ones.
	result, err := env.orch.Start(ctx, project.ID, domain.PhaseKeywords, RunOptions{SkipExisting: true, BatchSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)

	final := env.waitDone(t, key)
	require.Equal(t, 2, final.Skipped)
	require.Zero(t, final.Completed)
	require.Equal(t, final.Total, final.Completed+final.Failed+final.Skipped)
}

func TestRunPublishesProgressEvents(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	project := env.seedProject(t, true)
	env.seedItems(t, project.ID, domain.PhaseBrandVoice, "bv-1", "bv-2")

	ch, cancel := env.bus.Subscribe(project.ID)
	defer cancel()

	_, err := env.orch.Start(context.Background(), project.ID, domain.PhaseBrandVoice, RunOptions{})
	require.NoError(t, err)
	env.waitDone(t, progress.Key(project.ID, domain.PhaseBrandVoice))

	var progressEvents, recordEvents int
	for {
		select {
		case ev := <-ch:
			switch ev.Type {
			case events.TypeProgress:
				progressEvents++
			case events.TypeRecordCreated:
				recordEvents++
			}
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}

	require.GreaterOrEqual(t, progressEvents, 2)
	require.Equal(t, 2, recordEvents)
}
