package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is at the API boundary.
var (
	// ErrNotFound indicates that a referenced record or project does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict: a job already running for the
	// same (project, phase), or an approval action on a terminal record.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports bad request parameters. The job never starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GenerationError wraps a single-item backend failure. It is caught by the
// orchestrator, counted as failed, and never aborts the batch.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// JobFatalError reports a pre-flight condition (such as missing project
// configuration) that prevents a job from processing any items.
type JobFatalError struct {
	Reason string
	Err    error
}

func (e *JobFatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job aborted: %s: %v", e.Reason, e.Err)
	}
	return "job aborted: " + e.Reason
}

func (e *JobFatalError) Unwrap() error {
	return e.Err
}
