package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/infra/memory"
	"writer-ai/internal/usecase"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
}

func newWriter(gen adapter.Generator) (usecase.WriterUseCase, *memory.SessionStore) {
	store := memory.NewSessionStore()
	uc := usecase.NewWriterUseCase(store, func(usecase.JobTracker) adapter.Generator { return gen }, usecase.WriterOptions{
		MaxRetries: 2,
		Location:   time.FixedZone("JST", 9*3600),
		Now:        fixedNow,
	}, nil)
	return uc, store
}

func TestWriter_WriteStoresDraft(t *testing.T) {
	t.Parallel()
	gen := &scriptedGenerator{outputs: []string{draft("題", 1900)}}
	uc, store := newWriter(gen)
	ctx := context.Background()

	out, err := uc.Write(ctx, "sess-1", "元の文章")
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "題" || out.Length != 1900 || !out.Accepted || out.Attempts != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	if !strings.Contains(out.Meta, "出力日時: 2026-10-19 21:30") {
		t.Fatalf("meta should use the configured zone: %q", out.Meta)
	}

	sess, err := store.Get(ctx, "sess-1")
	if err != nil || sess.Draft != out {
		t.Fatalf("draft not stored: %v", err)
	}
	cur, err := uc.Current(ctx, "sess-1")
	if err != nil || cur != out {
		t.Fatalf("current = %+v, %v", cur, err)
	}
}

func TestWriter_EmptySource(t *testing.T) {
	t.Parallel()
	gen := &scriptedGenerator{outputs: []string{"x"}}
	uc, _ := newWriter(gen)
	if _, err := uc.Write(context.Background(), "s", "   "); !errors.Is(err, domain.ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if gen.calls() != 0 {
		t.Fatal("generator called for empty input")
	}
}

func TestWriter_GenerationErrorKeepsPreviousDraft(t *testing.T) {
	t.Parallel()
	gen := &scriptedGenerator{outputs: []string{draft("Old", 2000)}}
	uc, _ := newWriter(gen)
	ctx := context.Background()
	prev, err := uc.Write(ctx, "s", "first")
	if err != nil {
		t.Fatal(err)
	}

	gen.errAt = 2
	gen.err = errBoom
	if _, err := uc.Write(ctx, "s", "second"); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	cur, err := uc.Current(ctx, "s")
	if err != nil || cur != prev {
		t.Fatalf("previous draft should survive a failed write: %+v %v", cur, err)
	}
}

func TestWriter_CurrentAndClear(t *testing.T) {
	t.Parallel()
	gen := &scriptedGenerator{outputs: []string{draft("T", 2000)}}
	uc, _ := newWriter(gen)
	ctx := context.Background()

	if _, err := uc.Current(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := uc.Clear(ctx, "nobody"); err != nil {
		t.Fatalf("clearing an unknown session is a no-op, got %v", err)
	}

	if _, err := uc.Write(ctx, "s", "src"); err != nil {
		t.Fatal(err)
	}
	if err := uc.Clear(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Current(ctx, "s"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("draft should be gone after clear, got %v", err)
	}
}

func TestWriter_QueuedGeneratorTracksActiveJob(t *testing.T) {
	t.Parallel()
	q := &fakeQueue{
		enqueueID: "job-42",
		statuses:  []model.JobStatus{model.JobStatusRunning, model.JobStatusFinished},
		result:    adapter.ResultResponse{Ready: true, Result: draft("Queued", 2000)},
	}
	poller := usecase.NewJobPoller(q, zeroSleeper(), nil)
	factory := usecase.QueuedGeneratorFactory(poller, usecase.NewPromptBuilder(), "gpt-4.1", 10, time.Second)
	store := memory.NewSessionStore()
	uc := usecase.NewWriterUseCase(store, factory, usecase.WriterOptions{MaxRetries: 2}, nil)

	out, err := uc.Write(context.Background(), "s", "src")
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "Queued" || out.Length != 2000 {
		t.Fatalf("unexpected output %+v", out)
	}
	sess, _ := store.Get(context.Background(), "s")
	if sess.ActiveJobID != "job-42" {
		t.Fatalf("active job = %q", sess.ActiveJobID)
	}
	req := q.enqueued[0]
	if req.System != usecase.DefaultSystemPrompt || req.Model != "gpt-4.1" || !strings.HasSuffix(req.User, "src") {
		t.Fatalf("unexpected enqueue request %+v", req)
	}
}

func TestWriter_ConcurrentWriteReadSweep(t *testing.T) {
	t.Parallel()
	q := &fakeQueue{
		enqueueID: "job-1",
		statuses:  []model.JobStatus{model.JobStatusFinished},
		result:    adapter.ResultResponse{Ready: true, Result: draft("T", 2000)},
	}
	poller := usecase.NewJobPoller(q, zeroSleeper(), nil)
	factory := usecase.QueuedGeneratorFactory(poller, usecase.NewPromptBuilder(), "m", 3, 0)
	store := memory.NewSessionStore()
	uc := usecase.NewWriterUseCase(store, factory, usecase.WriterOptions{}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := uc.Write(ctx, "s", "src"); err != nil {
				t.Errorf("write %d: %v", i, err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if out, err := uc.Current(ctx, "s"); err == nil && out.Title != "T" {
				t.Errorf("unexpected draft %+v", out)
				return
			}
			_, _ = store.Sweep(ctx, time.Now().Add(-time.Hour))
		}
	}()
	wg.Wait()

	sess, err := store.Get(ctx, "s")
	if err != nil || sess.ActiveJobID != "job-1" || sess.Draft == nil {
		t.Fatalf("unexpected final session %+v %v", sess, err)
	}
}

func TestWriter_QueueTimeoutIsGenerationError(t *testing.T) {
	t.Parallel()
	q := &fakeQueue{enqueueID: "j", statuses: []model.JobStatus{model.JobStatusQueued}}
	poller := usecase.NewJobPoller(q, zeroSleeper(), nil)
	factory := usecase.QueuedGeneratorFactory(poller, usecase.NewPromptBuilder(), "m", 3, 0)
	uc := usecase.NewWriterUseCase(memory.NewSessionStore(), factory, usecase.WriterOptions{}, nil)

	_, err := uc.Write(context.Background(), "s", "src")
	if !errors.Is(err, domain.ErrGeneration) || !errors.Is(err, domain.ErrJobTimedOut) || !usecase.IsQueueOutcome(err) {
		t.Fatalf("expected wrapped timeout, got %v", err)
	}
	if q.polls != 3 {
		t.Fatalf("expected 3 polls, got %d", q.polls)
	}
}

func TestDirectGenerator_UsesPromptMessages(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: "  T\n\nbody  "}
	g := usecase.NewDirectGenerator(ai, usecase.NewPromptBuilder(), "gpt-4.1")
	out, err := g.Generate(context.Background(), "src", "fix")
	if err != nil || out != "T\n\nbody" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if ai.model != "gpt-4.1" || len(ai.msgs) != 2 || !strings.HasSuffix(ai.msgs[1].Content, "追加調整指示：\nfix") {
		t.Fatalf("unexpected call model=%q msgs=%+v", ai.model, ai.msgs)
	}
}

type fakeAI struct {
	reply string
	err   error
	model string
	msgs  []adapter.Message
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) { return []string{"gpt-4.1"}, nil }
func (f *fakeAI) CountTokens(ctx context.Context, model string, msgs []adapter.Message) (int, error) {
	return len(msgs), nil
}
func (f *fakeAI) Chat(ctx context.Context, model string, msgs []adapter.Message) (string, error) {
	s, _, err := f.ChatWithUsage(ctx, model, msgs)
	return s, err
}
func (f *fakeAI) ChatWithUsage(ctx context.Context, model string, msgs []adapter.Message) (string, adapter.Usage, error) {
	f.model, f.msgs = model, msgs
	return f.reply, adapter.Usage{}, f.err
}
