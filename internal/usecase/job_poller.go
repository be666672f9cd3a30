// File: internal/usecase/job_poller.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
)

// Sleeper suspends the caller between polls. Tests inject a zero-delay one.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerSleeper waits on a real timer and returns early with ctx.Err().
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// JobTracker records the job a session is waiting on. The latest
// submission replaces whatever was tracked before.
type JobTracker interface {
	TrackJob(ctx context.Context, jobID string) error
}

type JobTrackerFunc func(ctx context.Context, jobID string) error

func (f JobTrackerFunc) TrackJob(ctx context.Context, jobID string) error { return f(ctx, jobID) }

// JobPoller submits generation jobs to the remote worker and waits for them.
//
// Submission errors propagate; status/result query failures are absorbed and
// read as "not ready". There is no retry of individual calls: the bounded
// poll loop is the only resilience.
type JobPoller struct {
	queue   adapter.JobQueue
	sleeper Sleeper
	log     *zerolog.Logger
}

func NewJobPoller(queue adapter.JobQueue, sleeper Sleeper, log *zerolog.Logger) *JobPoller {
	if sleeper == nil {
		sleeper = TimerSleeper
	}
	if log == nil {
		log = logging.Nop()
	}
	return &JobPoller{queue: queue, sleeper: sleeper, log: log}
}

// Enqueue submits one job. On success the id is handed to tracker, which may
// be nil. A tracker failure is logged; the job was accepted either way.
func (p *JobPoller) Enqueue(ctx context.Context, tracker JobTracker, system, user, modelName string) (string, error) {
	id, err := p.queue.Enqueue(ctx, adapter.EnqueueRequest{System: system, User: user, Model: modelName})
	if err != nil {
		metrics.IncSubmission(false)
		return "", &domain.SubmissionError{Reason: "enqueue request", Err: err}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		metrics.IncSubmission(false)
		return "", &domain.SubmissionError{Reason: "response has no job_id"}
	}
	metrics.IncSubmission(true)

	log := logging.With(logging.WithJobID(ctx, id), p.log)
	if tracker != nil {
		if err := tracker.TrackJob(ctx, id); err != nil {
			log.Warn().Err(err).Msg("could not record active job")
		}
	}
	log.Info().Str("model", modelName).Msg("job enqueued")
	return id, nil
}

// PollStatus never fails: transport and decode errors come back as
// JobStatusUnknown so the caller's loop can keep going.
func (p *JobPoller) PollStatus(ctx context.Context, id string) model.JobStatus {
	st, err := p.queue.Status(ctx, id)
	if err != nil {
		perr := &domain.TransientPollError{JobID: id, Op: "status", Err: err}
		p.log.Warn().Err(perr).Str("job_id", id).Msg("status poll failed; treating as unknown")
		st = model.JobStatusUnknown
	}
	metrics.IncPoll(string(st))
	return st
}

// AwaitCompletion polls up to maxAttempts times, interval apart, and stops
// at the first terminal status. Running out of attempts is not an error: the
// returned Job has TimedOut set. The only error is ctx cancellation.
func (p *JobPoller) AwaitCompletion(ctx context.Context, id string, maxAttempts int, interval time.Duration) (*model.Job, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("%w: maxAttempts must be >= 1, got %d", domain.ErrInvalidArgument, maxAttempts)
	}
	log := logging.With(logging.WithJobID(ctx, id), p.log)
	job := &model.Job{ID: id, Status: model.JobStatusUnknown}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleeper.Sleep(ctx, interval); err != nil {
				metrics.IncWaitOutcome("canceled")
				return job, err
			}
		}
		job.Status = p.PollStatus(ctx, id)
		job.Polls = attempt
		if job.Status.IsTerminal() {
			metrics.IncWaitOutcome(string(job.Status))
			log.Debug().Int("polls", attempt).Str("status", string(job.Status)).Msg("job reached terminal status")
			return job, nil
		}
		if err := ctx.Err(); err != nil {
			metrics.IncWaitOutcome("canceled")
			return job, err
		}
	}

	job.TimedOut = true
	metrics.IncWaitOutcome("timed_out")
	log.Warn().Int("polls", maxAttempts).Str("last_status", string(job.Status)).Msg("job poll budget exhausted")
	return job, nil
}

// FetchResult returns the payload only when the worker says it is ready.
// Absence is not an error: the job may still be running.
func (p *JobPoller) FetchResult(ctx context.Context, id string) (string, bool) {
	res, err := p.queue.Result(ctx, id)
	if err != nil {
		perr := &domain.TransientPollError{JobID: id, Op: "result", Err: err}
		p.log.Warn().Err(perr).Str("job_id", id).Msg("result query failed; treating as not ready")
		return "", false
	}
	if !res.Ready {
		return "", false
	}
	return res.Result, true
}

// Run is the end-to-end path: enqueue, wait, fetch. Worker failure, timeout
// and a finished-but-not-ready result each map to their own error.
func (p *JobPoller) Run(ctx context.Context, tracker JobTracker, system, user, modelName string, maxAttempts int, interval time.Duration) (string, error) {
	id, err := p.Enqueue(ctx, tracker, system, user, modelName)
	if err != nil {
		return "", err
	}
	job, err := p.AwaitCompletion(ctx, id, maxAttempts, interval)
	if err != nil {
		return "", err
	}
	switch {
	case job.TimedOut:
		return "", fmt.Errorf("%w: job %s after %d polls (last status %s)", domain.ErrJobTimedOut, id, job.Polls, job.Status)
	case job.Status == model.JobStatusFailed:
		return "", fmt.Errorf("%w: job %s", domain.ErrJobFailed, id)
	}
	out, ok := p.FetchResult(ctx, id)
	if !ok {
		return "", fmt.Errorf("%w: job %s", domain.ErrResultNotReady, id)
	}
	return out, nil
}

// IsQueueOutcome reports whether err came from the queue path rather than
// from the model itself.
func IsQueueOutcome(err error) bool {
	return errors.Is(err, domain.ErrSubmission) ||
		errors.Is(err, domain.ErrJobFailed) ||
		errors.Is(err, domain.ErrJobTimedOut) ||
		errors.Is(err, domain.ErrResultNotReady)
}
