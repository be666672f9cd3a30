package model

import "time"

type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusFinished JobStatus = "finished"
	JobStatusFailed   JobStatus = "failed"

	// JobStatusUnknown is client-side only: a status query failed or the
	// worker answered with something we do not recognise.
	JobStatusUnknown JobStatus = "unknown"
)

// ParseJobStatus normalises a worker-reported status. Synonyms seen in
// common queue implementations map onto the four canonical values.
func ParseJobStatus(s string) JobStatus {
	switch s {
	case "queued", "pending", "deferred", "scheduled":
		return JobStatusQueued
	case "running", "started", "processing":
		return JobStatusRunning
	case "finished", "completed", "done", "succeeded":
		return JobStatusFinished
	case "failed", "error", "canceled", "stopped":
		return JobStatusFailed
	default:
		return JobStatusUnknown
	}
}

// IsTerminal reports whether polling should stop.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// Job is the client's view of one remote generation request.
type Job struct {
	ID     string
	Status JobStatus
	Result string
	Ready  bool

	// Polls is the number of status queries issued by AwaitCompletion.
	Polls int
	// TimedOut is set when the poll budget ran out on a non-terminal status.
	// It is a returned condition, not an error, and distinct from failed.
	TimedOut bool
}

func (j *Job) IsTerminal() bool { return j.Status.IsTerminal() }

// WorkerJob is the worker-side record behind the /enqueue, /status and
// /result endpoints.
type WorkerJob struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	System    string    `json:"system"`
	User      string    `json:"user"`
	Model     string    `json:"model"`
	Result    string    `json:"result,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkerJob(id, system, user, model string) *WorkerJob {
	now := time.Now()
	return &WorkerJob{
		ID:        id,
		Status:    JobStatusQueued,
		System:    system,
		User:      user,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Ready reports whether the result payload can be handed out.
func (j *WorkerJob) Ready() bool { return j.Status == JobStatusFinished }
