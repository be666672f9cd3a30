package ai

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"writer-ai/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev testing.
// It answers with a title line and a body built by repeating the last user
// message until BodyChars runes are reached.
type NoopAIAdapter struct {
	BodyChars int
	Delay     time.Duration
}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{BodyChars: 2000, Delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-ai-model"}, nil
}

func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += utf8.RuneCountInString(m.Content)
	}
	return n, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := a.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (a *NoopAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return "", adapter.Usage{}, ctx.Err()
		}
	}
	seed := "下書き"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" && strings.TrimSpace(messages[i].Content) != "" {
			seed = strings.Join(strings.Fields(messages[i].Content), " ")
			break
		}
	}
	body := repeatToRunes(seed, a.BodyChars)
	reply := "Noop draft\n\n" + body
	in, _ := a.CountTokens(ctx, model, messages)
	out := utf8.RuneCountInString(reply)
	return reply, adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}, nil
}

func repeatToRunes(seed string, n int) string {
	if n <= 0 {
		return ""
	}
	src := []rune(seed)
	out := make([]rune, 0, n)
	for len(out) < n {
		out = append(out, src...)
	}
	return string(out[:n])
}
