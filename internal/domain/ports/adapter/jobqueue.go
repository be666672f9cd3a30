package adapter

import (
	"context"

	"writer-ai/internal/domain/model"
)

// EnqueueRequest is the body of POST /enqueue.
type EnqueueRequest struct {
	System string `json:"system"`
	User   string `json:"user"`
	Model  string `json:"model"`
}

// ResultResponse is the body of GET /result/{job_id}.
type ResultResponse struct {
	Ready  bool   `json:"ready"`
	Result string `json:"result,omitempty"`
}

// JobQueue is the remote worker surface. Every call is exactly one network
// round trip; implementations must not retry.
type JobQueue interface {
	Enqueue(ctx context.Context, req EnqueueRequest) (jobID string, err error)
	Status(ctx context.Context, jobID string) (model.JobStatus, error)
	Result(ctx context.Context, jobID string) (ResultResponse, error)
}
