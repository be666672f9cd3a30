// File: internal/usecase/generators.go
package usecase

import (
	"context"
	"strings"
	"time"

	"writer-ai/internal/domain/ports/adapter"
)

// Compile-time checks
var (
	_ adapter.Generator = (*DirectGenerator)(nil)
	_ adapter.Generator = (*QueuedGenerator)(nil)
)

// DirectGenerator calls the model provider synchronously.
type DirectGenerator struct {
	ai      adapter.AIServiceAdapter
	prompts *PromptBuilder
	model   string
}

func NewDirectGenerator(ai adapter.AIServiceAdapter, prompts *PromptBuilder, modelName string) *DirectGenerator {
	return &DirectGenerator{ai: ai, prompts: prompts, model: modelName}
}

func (g *DirectGenerator) Generate(ctx context.Context, source, corrective string) (string, error) {
	reply, _, err := g.ai.ChatWithUsage(ctx, g.model, g.prompts.Messages(source, corrective))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// QueuedGenerator hands each generation to the remote worker and blocks
// until the job finishes, fails or the poll budget runs out. Each
// submission is reported to the tracker.
type QueuedGenerator struct {
	poller      *JobPoller
	prompts     *PromptBuilder
	model       string
	tracker     JobTracker
	maxAttempts int
	interval    time.Duration
}

func NewQueuedGenerator(poller *JobPoller, prompts *PromptBuilder, modelName string, tracker JobTracker, maxAttempts int, interval time.Duration) *QueuedGenerator {
	return &QueuedGenerator{
		poller:      poller,
		prompts:     prompts,
		model:       modelName,
		tracker:     tracker,
		maxAttempts: maxAttempts,
		interval:    interval,
	}
}

func (g *QueuedGenerator) Generate(ctx context.Context, source, corrective string) (string, error) {
	out, err := g.poller.Run(ctx, g.tracker, g.prompts.System, g.prompts.BuildUser(source, corrective), g.model, g.maxAttempts, g.interval)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GeneratorFactory binds a generator to one write. tracker records the
// session's active job for generators that submit jobs.
type GeneratorFactory func(tracker JobTracker) adapter.Generator

func DirectGeneratorFactory(g *DirectGenerator) GeneratorFactory {
	return func(JobTracker) adapter.Generator { return g }
}

func QueuedGeneratorFactory(poller *JobPoller, prompts *PromptBuilder, modelName string, maxAttempts int, interval time.Duration) GeneratorFactory {
	return func(tracker JobTracker) adapter.Generator {
		return NewQueuedGenerator(poller, prompts, modelName, tracker, maxAttempts, interval)
	}
}
