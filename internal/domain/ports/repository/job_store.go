package repository

import (
	"context"

	"writer-ai/internal/domain/model"
)

// JobStore keeps worker-side job records. Get returns domain.ErrNotFound
// for unknown ids.
type JobStore interface {
	Create(ctx context.Context, job *model.WorkerJob) error
	Get(ctx context.Context, id string) (*model.WorkerJob, error)
	// MarkRunning moves a queued job to running.
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id, result string) error
	Fail(ctx context.Context, id, reason string) error
}
