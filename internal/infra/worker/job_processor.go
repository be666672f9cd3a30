package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/domain/ports/repository"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
)

// JobProcessor accepts generation jobs, records them in the store and runs
// them on the pool. A job moves queued -> running -> finished | failed.
type JobProcessor struct {
	store        repository.JobStore
	pool         *Pool
	ai           adapter.AIServiceAdapter
	defaultModel string
	log          *zerolog.Logger
}

func NewJobProcessor(store repository.JobStore, pool *Pool, ai adapter.AIServiceAdapter, defaultModel string, log *zerolog.Logger) *JobProcessor {
	if log == nil {
		log = logging.Nop()
	}
	return &JobProcessor{store: store, pool: pool, ai: ai, defaultModel: defaultModel, log: log}
}

// Submit stores a new queued job and hands it to the pool. When the pool is
// saturated the job is kept but marked failed, so clients polling it see a
// terminal status instead of waiting out their budget.
func (p *JobProcessor) Submit(ctx context.Context, system, user, modelName string) (*model.WorkerJob, error) {
	if strings.TrimSpace(user) == "" {
		return nil, fmt.Errorf("%w: user prompt is empty", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = p.defaultModel
	}
	job := model.NewWorkerJob(uuid.NewString(), system, user, modelName)
	if err := p.store.Create(ctx, job); err != nil {
		return nil, err
	}
	log := logging.With(logging.WithJobID(ctx, job.ID), p.log)

	id := job.ID
	run := func(ctx context.Context) error { return p.Process(ctx, id) }
	if err := p.pool.Submit(run, func() { p.abandon(id) }); err != nil {
		log.Warn().Err(err).Msg("could not schedule job")
		metrics.IncWorkerJob(string(model.JobStatusFailed))
		if ferr := p.store.Fail(ctx, id, err.Error()); ferr != nil {
			return nil, ferr
		}
		job.Status = model.JobStatusFailed
		job.LastError = err.Error()
		return job, nil
	}
	log.Info().Str("model", modelName).Msg("job accepted")
	return job, nil
}

// abandon fails a job the pool dropped on shutdown, so pollers see a
// terminal status.
func (p *JobProcessor) abandon(id string) {
	metrics.IncWorkerJob(string(model.JobStatusFailed))
	if err := p.store.Fail(context.Background(), id, ErrPoolStopped.Error()); err != nil {
		p.log.Error().Err(err).Str("job_id", id).Msg("could not fail abandoned job")
	}
}

func (p *JobProcessor) Get(ctx context.Context, id string) (*model.WorkerJob, error) {
	return p.store.Get(ctx, id)
}

// Process runs one job to completion. Errors from the model are recorded on
// the job; only store failures are returned.
func (p *JobProcessor) Process(ctx context.Context, id string) error {
	log := logging.With(logging.WithJobID(ctx, id), p.log)
	if err := p.store.MarkRunning(ctx, id); err != nil {
		return fmt.Errorf("mark running %s: %w", id, err)
	}
	job, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}

	start := time.Now()
	msgs := make([]adapter.Message, 0, 2)
	if strings.TrimSpace(job.System) != "" {
		msgs = append(msgs, adapter.Message{Role: "system", Content: job.System})
	}
	msgs = append(msgs, adapter.Message{Role: "user", Content: job.User})

	reply, usage, err := p.ai.ChatWithUsage(ctx, job.Model, msgs)
	latency := time.Since(start)
	if err != nil {
		metrics.IncWorkerJob(string(model.JobStatusFailed))
		log.Error().Err(err).Str("model", job.Model).Dur("duration_ms", latency).Msg("job failed")
		// record the failure even if the pool context is going away
		return p.store.Fail(context.Background(), id, err.Error())
	}

	metrics.IncWorkerJob(string(model.JobStatusFinished))
	log.Info().
		Str("model", job.Model).
		Int("tokens_in", usage.PromptTokens).
		Int("tokens_out", usage.CompletionTokens).
		Dur("duration_ms", latency).
		Msg("job finished")
	return p.store.Complete(context.Background(), id, reply)
}
