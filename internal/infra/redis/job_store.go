package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/repository"
)

var _ repository.JobStore = (*JobStore)(nil)

const lockTTL = 5 * time.Second

// JobStore keeps worker jobs as JSON under writer:job:{id}. Every write
// refreshes the TTL, so a job expires ttl after its last state change.
// Status transitions hold a short per-job lock.
type JobStore struct {
	client RedisClient
	locker Locker
	ttl    time.Duration
}

func NewJobStore(client RedisClient, locker Locker, ttl time.Duration) *JobStore {
	return &JobStore{client: client, locker: locker, ttl: ttl}
}

func jobKey(id string) string { return fmt.Sprintf("writer:job:%s", id) }

func (s *JobStore) Create(ctx context.Context, job *model.WorkerJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, jobKey(job.ID), data, s.ttl)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	if !ok {
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrInvalidArgument)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.WorkerJob, error) {
	raw, err := s.client.Get(ctx, jobKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	var j model.WorkerJob
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &j, nil
}

func (s *JobStore) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusRunning
	})
}

func (s *JobStore) Complete(ctx context.Context, id, result string) error {
	return s.update(ctx, id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusFinished
		j.Result = result
	})
}

func (s *JobStore) Fail(ctx context.Context, id, reason string) error {
	return s.update(ctx, id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusFailed
		j.LastError = reason
	})
}

func (s *JobStore) update(ctx context.Context, id string, fn func(j *model.WorkerJob)) error {
	if s.locker != nil {
		lockKey := jobKey(id) + ":lock"
		token, err := s.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			return fmt.Errorf("lock job %s: %w", id, err)
		}
		defer func() { _ = s.locker.Unlock(context.Background(), lockKey, token) }()
	}

	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(j)
	j.UpdatedAt = time.Now()
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKey(id), data, s.ttl)
}
