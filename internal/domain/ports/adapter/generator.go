package adapter

import "context"

// Generator produces raw model text for a source text. corrective is empty
// on the first attempt and carries a lengthen/shorten instruction on retries.
type Generator interface {
	Generate(ctx context.Context, source, corrective string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, source, corrective string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, source, corrective string) (string, error) {
	return f(ctx, source, corrective)
}
