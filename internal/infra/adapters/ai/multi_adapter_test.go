package ai_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"writer-ai/internal/config"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	ai "writer-ai/internal/infra/adapters/ai"
)

type stubAI struct {
	name         string
	ctN          int
	cwuN         int
	lastModelCT  string
	lastModelCWU string
}

func (s *stubAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{s.name + "-model"}, nil
}
func (s *stubAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	s.ctN++
	s.lastModelCT = model
	return 1, nil
}
func (s *stubAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return "ok", nil
}
func (s *stubAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	s.cwuN++
	s.lastModelCWU = model
	return "ok", adapter.Usage{PromptTokens: 1, CompletionTokens: 1}, nil
}

func TestRouting_ExplicitMap_Heuristics_And_Fallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	open := &stubAI{name: "openai"}
	gem := &stubAI{name: "gemini"}

	m := ai.NewMultiAIAdapter(
		"openai",
		map[string]adapter.AIServiceAdapter{"openai": open, "gemini": gem},
		map[string]string{"custom-x": "gemini"},
	)

	// explicit map wins
	_, _ = m.CountTokens(ctx, "custom-x", nil)
	if gem.ctN != 1 || open.ctN != 0 {
		t.Fatalf("explicit map should route to gemini, got open:%d gem:%d", open.ctN, gem.ctN)
	}
	open.ctN, gem.ctN = 0, 0

	// gpt-* -> openai
	_, _, _ = m.ChatWithUsage(ctx, "gpt-4.1", nil)
	if open.cwuN != 1 || gem.cwuN != 0 {
		t.Fatalf("heuristic gpt-* should go openai")
	}
	open.cwuN, gem.cwuN = 0, 0

	// gemini-* -> gemini
	_, _, _ = m.ChatWithUsage(ctx, "gemini-2.0-flash", nil)
	if gem.cwuN != 1 || open.cwuN != 0 {
		t.Fatalf("heuristic gemini-* should go gemini")
	}

	// unknown -> default provider (openai)
	_, _ = m.CountTokens(ctx, "unknown", nil)
	if open.ctN != 1 || gem.ctN != 0 {
		t.Fatalf("unknown model should go to default provider (openai)")
	}
}

func TestRouting_MissingProviderErrors(t *testing.T) {
	t.Parallel()
	m := ai.NewMultiAIAdapter("gemini", map[string]adapter.AIServiceAdapter{}, nil)
	if _, err := m.Chat(context.Background(), "gpt-4.1", nil); err == nil {
		t.Fatal("expected error when no provider is configured")
	}
}

func TestListModels_Union(t *testing.T) {
	t.Parallel()
	m := ai.NewMultiAIAdapter(
		"openai",
		map[string]adapter.AIServiceAdapter{"openai": &stubAI{name: "openai"}, "gemini": &stubAI{name: "gemini"}},
		map[string]string{"openai-model": "openai"},
	)
	got, err := m.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 unique models, got %v", got)
	}
}

type slowAI struct {
	stubAI
	inFlight, peak int32
}

func (s *slowAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)
	return "ok", adapter.Usage{}, nil
}

func TestLimitedAI_CapsConcurrency(t *testing.T) {
	t.Parallel()
	inner := &slowAI{}
	l := ai.NewLimitedAI(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = l.ChatWithUsage(context.Background(), "m", nil)
		}()
	}
	wg.Wait()
	if p := atomic.LoadInt32(&inner.peak); p > 2 {
		t.Fatalf("peak concurrency %d exceeds limit 2", p)
	}
}

func TestLimitedAI_ZeroLimitReturnsInner(t *testing.T) {
	t.Parallel()
	inner := &stubAI{}
	if got := ai.NewLimitedAI(inner, 0); got != adapter.AIServiceAdapter(inner) {
		t.Fatal("limit 0 should return the inner adapter unchanged")
	}
}

func TestNoopAI_ProducesTitleAndBody(t *testing.T) {
	t.Parallel()
	n := &ai.NoopAIAdapter{BodyChars: 1900}
	reply, err := n.Chat(context.Background(), "", []adapter.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "信頼について"},
	})
	if err != nil {
		t.Fatal(err)
	}
	title, body := model.SplitTitleBody(reply)
	if title != "Noop draft" {
		t.Fatalf("title = %q", title)
	}
	if utf8.RuneCountInString(body) != 1900 || !strings.HasPrefix(body, "信頼について") {
		t.Fatalf("unexpected body length %d", utf8.RuneCountInString(body))
	}
}

func TestFromConfig_DevWithoutKeysUsesNoop(t *testing.T) {
	t.Parallel()
	got, err := ai.FromConfig(context.Background(), config.AIConfig{DefaultModel: "gpt-4.1"}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*ai.NoopAIAdapter); !ok {
		t.Fatalf("expected noop adapter, got %T", got)
	}
	if _, err := ai.FromConfig(context.Background(), config.AIConfig{}, false, nil); err == nil {
		t.Fatal("expected an error without keys outside dev mode")
	}
}

func TestFromConfig_OpenAIKeyBuildsRouter(t *testing.T) {
	t.Parallel()
	got, err := ai.FromConfig(context.Background(), config.AIConfig{OpenAIKey: "sk-test", DefaultModel: "gpt-4.1", ConcurrentLimit: 2}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*ai.NoopAIAdapter); ok {
		t.Fatal("a configured key must not fall back to noop")
	}
	models, err := got.ListModels(context.Background())
	if err != nil || len(models) != 1 || models[0] != "gpt-4.1" {
		t.Fatalf("models=%v err=%v", models, err)
	}
}
