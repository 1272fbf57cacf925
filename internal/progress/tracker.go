// Package progress owns the live, in-memory progress state for generation
// jobs. One entry exists per (project, phase) key; the orchestrator is the
// single writer for its key while pollers read snapshots concurrently.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/draftline/draftline/internal/domain"
)

// State is the observable progress of one job. Snapshots are value copies;
// mutating a snapshot has no effect on the tracker.
type State struct {
	JobID     string              `json:"job_id"`
	ProjectID string              `json:"project_id"`
	Phase     domain.Phase        `json:"phase"`
	Lifecycle domain.JobLifecycle `json:"status"`
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Error     string              `json:"error,omitempty"`
	StartedAt time.Time           `json:"started_at,omitempty"`
	EndedAt   time.Time           `json:"ended_at,omitempty"`
}

// Key builds the tracker key for a project and phase.
func Key(projectID string, phase domain.Phase) string {
	return fmt.Sprintf("%s:%s", projectID, phase)
}

// Tracker is a keyed arena of job progress states with atomic updates.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[string]*State),
	}
}

// Snapshot returns a copy of the state for a key. The second return value is
// false when no job has ever run for the key (callers report idle).
func (t *Tracker) Snapshot(key string) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.states[key]
	if !ok {
		return State{Lifecycle: domain.LifecycleIdle}, false
	}
	return *s, true
}

// TryStart claims the key for a new run. It fails with domain.ErrConflict if
// a job is already running for the key; completed or failed states are
// replaced. Total is fixed here and never mutated mid-run.
func (t *Tracker) TryStart(key, jobID, projectID string, phase domain.Phase, total int) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.states[key]; ok && existing.Lifecycle == domain.LifecycleRunning {
		return *existing, domain.ErrConflict
	}

	s := &State{
		JobID:     jobID,
		ProjectID: projectID,
		Phase:     phase,
		Lifecycle: domain.LifecycleRunning,
		Total:     total,
		StartedAt: time.Now(),
	}
	t.states[key] = s
	return *s, nil
}

// SetFailed records a pre-flight failure for the key. The job never processed
// any items; the error is surfaced once through the state. A running state
// owned by a different job is left untouched: the failed trigger never ran,
// so it must not displace the job that did.
func (t *Tracker) SetFailed(key, jobID, projectID string, phase domain.Phase, errMsg string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.states[key]; ok && existing.Lifecycle == domain.LifecycleRunning && existing.JobID != jobID {
		return *existing
	}

	now := time.Now()
	s := &State{
		JobID:     jobID,
		ProjectID: projectID,
		Phase:     phase,
		Lifecycle: domain.LifecycleFailed,
		Error:     errMsg,
		StartedAt: now,
		EndedAt:   now,
	}
	t.states[key] = s
	return *s
}

// Update applies a mutator to the state under the write lock and returns the
// resulting snapshot. Counters only ever increase through this path, so
// concurrent pollers observe monotonically non-decreasing values.
func (t *Tracker) Update(key string, fn func(*State)) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[key]
	if !ok {
		return State{Lifecycle: domain.LifecycleIdle}, false
	}
	fn(s)
	return *s, true
}

// Finish moves the key to a terminal lifecycle and stamps the end time.
// Counters are left untouched.
func (t *Tracker) Finish(key string, lifecycle domain.JobLifecycle, errMsg string) (State, bool) {
	return t.Update(key, func(s *State) {
		s.Lifecycle = lifecycle
		s.Error = errMsg
		s.EndedAt = time.Now()
	})
}
