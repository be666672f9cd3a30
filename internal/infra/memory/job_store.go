package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/repository"
)

var _ repository.JobStore = (*JobStore)(nil)

// JobStore is the worker's default in-process job table.
type JobStore struct {
	mu   sync.RWMutex
	byID map[string]*model.WorkerJob
}

func NewJobStore() *JobStore {
	return &JobStore{byID: map[string]*model.WorkerJob{}}
}

func (s *JobStore) Create(ctx context.Context, job *model.WorkerJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[job.ID]; ok {
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrInvalidArgument)
	}
	cp := *job
	s.byID[job.ID] = &cp
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.WorkerJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *JobStore) MarkRunning(ctx context.Context, id string) error {
	return s.update(id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusRunning
	})
}

func (s *JobStore) Complete(ctx context.Context, id, result string) error {
	return s.update(id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusFinished
		j.Result = result
	})
}

func (s *JobStore) Fail(ctx context.Context, id, reason string) error {
	return s.update(id, func(j *model.WorkerJob) {
		j.Status = model.JobStatusFailed
		j.LastError = reason
	})
}

func (s *JobStore) update(id string, fn func(j *model.WorkerJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(j)
	j.UpdatedAt = time.Now()
	return nil
}

// Sweep drops terminal jobs not updated since cutoff. Jobs still queued or
// running are kept whatever their age.
func (s *JobStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.byID {
		if j.Status.IsTerminal() && j.UpdatedAt.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}
