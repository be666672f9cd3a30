package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/usecase"
)

// ---- Fake JobQueue ----

type fakeQueue struct {
	mu sync.Mutex

	enqueueID  string
	enqueueErr error
	enqueued   []adapter.EnqueueRequest

	// statuses are returned in order; the last one repeats.
	statuses  []model.JobStatus
	statusErr map[int]error // 1-based poll index -> error
	polls     int

	result      adapter.ResultResponse
	resultErr   error
	resultCalls int
}

func (q *fakeQueue) Enqueue(ctx context.Context, req adapter.EnqueueRequest) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, req)
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	return q.enqueueID, nil
}

func (q *fakeQueue) Status(ctx context.Context, id string) (model.JobStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.polls++
	if err := q.statusErr[q.polls]; err != nil {
		return model.JobStatusUnknown, err
	}
	if len(q.statuses) == 0 {
		return model.JobStatusQueued, nil
	}
	i := q.polls - 1
	if i >= len(q.statuses) {
		i = len(q.statuses) - 1
	}
	return q.statuses[i], nil
}

func (q *fakeQueue) Result(ctx context.Context, id string) (adapter.ResultResponse, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resultCalls++
	return q.result, q.resultErr
}

// ---- Sleepers ----

type recordingSleeper struct {
	calls []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

// ---- Generators ----

// scriptedGenerator returns outputs in order and records the corrective
// instruction of every call.
type scriptedGenerator struct {
	outputs     []string
	errAt       int // 1-based call index that fails; 0 = never
	err         error
	correctives []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, source, corrective string) (string, error) {
	g.correctives = append(g.correctives, corrective)
	n := len(g.correctives)
	if g.errAt == n {
		return "", g.err
	}
	i := n - 1
	if i >= len(g.outputs) {
		i = len(g.outputs) - 1
	}
	return g.outputs[i], nil
}

func (g *scriptedGenerator) calls() int { return len(g.correctives) }

var errBoom = errors.New("boom")

func draft(title string, bodyLen int) string {
	return title + "\n\n" + strings.Repeat("字", bodyLen)
}

func zeroSleeper() usecase.Sleeper {
	return usecase.SleeperFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })
}

// trackSession records submitted jobs on a test-local session.
func trackSession(sess *model.Session) usecase.JobTracker {
	return usecase.JobTrackerFunc(func(_ context.Context, jobID string) error {
		sess.SetActiveJob(jobID)
		return nil
	})
}
