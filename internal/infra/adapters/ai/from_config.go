package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"writer-ai/internal/config"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/infra/logging"
)

// FromConfig builds the provider stack: OpenAI and/or Gemini behind the
// model router, wrapped in the concurrency limiter. In dev mode without any
// key it falls back to the offline noop adapter.
func FromConfig(ctx context.Context, cfg config.AIConfig, dev bool, log *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	if log == nil {
		log = logging.Nop()
	}
	providers := map[string]adapter.AIServiceAdapter{}
	if cfg.OpenAIKey != "" {
		oa, err := NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.DefaultModel, cfg.Temperature, cfg.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		providers["openai"] = oa
	}
	if cfg.GeminiKey != "" {
		gm, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.DefaultModel, cfg.MaxOutputTokens, cfg.Temperature)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		providers["gemini"] = gm
	}

	if len(providers) == 0 {
		if !dev {
			return nil, fmt.Errorf("no AI provider configured")
		}
		log.Warn().Msg("no AI keys configured; using noop adapter")
		return NewNoopAIAdapter(), nil
	}

	def := "openai"
	if _, ok := providers[def]; !ok || strings.HasPrefix(strings.ToLower(cfg.DefaultModel), "gemini") {
		if _, ok := providers["gemini"]; ok {
			def = "gemini"
		}
	}
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	log.Info().Strs("providers", names).Str("default_provider", def).Str("default_model", cfg.DefaultModel).Msg("AI adapters ready")

	multi := NewMultiAIAdapter(def, providers, cfg.ModelProviders)
	return NewLimitedAI(multi, cfg.ConcurrentLimit), nil
}
