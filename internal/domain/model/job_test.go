package model

import (
	"errors"
	"testing"

	"writer-ai/internal/domain"
)

func TestParseJobStatus(t *testing.T) {
	t.Parallel()
	cases := map[string]JobStatus{
		"queued":    JobStatusQueued,
		"pending":   JobStatusQueued,
		"running":   JobStatusRunning,
		"started":   JobStatusRunning,
		"finished":  JobStatusFinished,
		"completed": JobStatusFinished,
		"failed":    JobStatusFailed,
		"":          JobStatusUnknown,
		"weird":     JobStatusUnknown,
	}
	for in, want := range cases {
		if got := ParseJobStatus(in); got != want {
			t.Fatalf("ParseJobStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	t.Parallel()
	for _, s := range []JobStatus{JobStatusQueued, JobStatusRunning, JobStatusUnknown} {
		if s.IsTerminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusFinished, JobStatusFailed} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}

func TestSession_LastWriteWins(t *testing.T) {
	t.Parallel()
	s := NewSession("s1")
	s.SetActiveJob("job-1")
	s.SetActiveJob("job-2")
	if s.ActiveJobID != "job-2" {
		t.Fatalf("expected job-2, got %s", s.ActiveJobID)
	}
	s.SetDraft(&Output{Title: "a"})
	s.SetDraft(&Output{Title: "b"})
	if s.Draft.Title != "b" {
		t.Fatalf("expected draft b, got %s", s.Draft.Title)
	}
	s.Clear()
	if s.ActiveJobID != "" || s.Draft != nil {
		t.Fatalf("clear did not reset: %+v", s)
	}
}

func TestSubmissionError_Is(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	var err error = &domain.SubmissionError{Reason: "enqueue request", Err: cause}
	if !errors.Is(err, domain.ErrSubmission) || !errors.Is(err, cause) {
		t.Fatalf("SubmissionError should match both sentinel and cause: %v", err)
	}
	var se *domain.SubmissionError
	if !errors.As(err, &se) || se.Reason != "enqueue request" {
		t.Fatalf("errors.As failed: %v", err)
	}
}
