package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptySource     = errors.New("source text is empty")

	// Job queue / generation errors
	ErrSubmission     = errors.New("job submission failed")
	ErrGeneration     = errors.New("generation failed")
	ErrJobFailed      = errors.New("job failed on worker")
	ErrJobTimedOut    = errors.New("job did not reach a terminal status in time")
	ErrResultNotReady = errors.New("job result not ready")
)

// SubmissionError is returned when an enqueue call errors at the transport
// level or the worker answers without a job identifier. It is never retried.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSubmission.Error(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrSubmission.Error(), e.Reason)
}

func (e *SubmissionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSubmission, e.Err}
	}
	return []error{ErrSubmission}
}

// TransientPollError describes a single failed status/result query. The
// poller logs and counts it, then treats the job as not ready.
type TransientPollError struct {
	JobID string
	Op    string // "status" | "result"
	Err   error
}

func (e *TransientPollError) Error() string {
	return fmt.Sprintf("poll %s for job %s: %v", e.Op, e.JobID, e.Err)
}

func (e *TransientPollError) Unwrap() error { return e.Err }
