// File: internal/usecase/length_controller.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
)

// GenerationResult is the last attempt of a run plus how it got there.
// Accepted is false when the band was never reached; the text is still the
// caller's to show.
type GenerationResult struct {
	Title    string
	Body     string
	Raw      string
	Length   int
	Attempts int
	Accepted bool
	History  []model.GenerationAttempt
}

// LengthController steers a single-shot generator into a body-length band
// by issuing corrective regenerations.
type LengthController struct {
	gen        adapter.Generator
	band       model.LengthBand
	maxRetries int
	log        *zerolog.Logger
}

func NewLengthController(gen adapter.Generator, band model.LengthBand, maxRetries int, log *zerolog.Logger) *LengthController {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = logging.Nop()
	}
	return &LengthController{gen: gen, band: band, maxRetries: maxRetries, log: log}
}

// Run makes at most 1+maxRetries generator calls and stops at the first
// accepted attempt. A generator error aborts the run and is returned wrapped
// in domain.ErrGeneration.
func (c *LengthController) Run(ctx context.Context, source string) (*GenerationResult, error) {
	defer logging.TraceDuration(c.log, "LengthController.Run")()
	if strings.TrimSpace(source) == "" {
		return nil, domain.ErrEmptySource
	}

	res := &GenerationResult{History: make([]model.GenerationAttempt, 0, 1+c.maxRetries)}
	attempt, err := c.attempt(ctx, res, source, "")
	if err != nil {
		return nil, err
	}

	for i := 0; i < c.maxRetries && !c.band.Accepts(attempt.Title, attempt.Body); i++ {
		var corrective string
		if attempt.BodyLength < c.band.Low {
			corrective = ShortInstruction(attempt.BodyLength, c.band.Low, c.band.High)
			metrics.IncCorrective("lengthen")
		} else {
			// over the band, or in band with an empty title
			corrective = LongInstruction(attempt.BodyLength, c.band.Low, c.band.High)
			metrics.IncCorrective("shorten")
		}
		c.log.Debug().
			Int("attempt", res.Attempts+1).
			Int("body_length", attempt.BodyLength).
			Msg("body outside target band, regenerating")

		if attempt, err = c.attempt(ctx, res, source, corrective); err != nil {
			return nil, err
		}
	}

	res.Title = attempt.Title
	res.Body = attempt.Body
	res.Raw = attempt.RawOutput
	res.Length = attempt.BodyLength
	res.Accepted = c.band.Accepts(attempt.Title, attempt.Body)
	metrics.ObserveBodyLength(res.Length)

	lvl := zerolog.InfoLevel
	if !res.Accepted {
		lvl = zerolog.WarnLevel
	}
	c.log.WithLevel(lvl).Int("attempts", res.Attempts).
		Int("body_length", res.Length).
		Bool("accepted", res.Accepted).
		Msg("length-targeted generation done")
	return res, nil
}

func (c *LengthController) attempt(ctx context.Context, res *GenerationResult, source, corrective string) (model.GenerationAttempt, error) {
	res.Attempts++
	raw, err := c.gen.Generate(ctx, source, corrective)
	if err != nil {
		metrics.IncAttempt("error")
		return model.GenerationAttempt{}, fmt.Errorf("%w: attempt %d: %w", domain.ErrGeneration, res.Attempts, err)
	}
	a := model.NewAttempt(corrective, raw)
	res.History = append(res.History, a)
	if c.band.Accepts(a.Title, a.Body) {
		metrics.IncAttempt("accepted")
	} else {
		metrics.IncAttempt("rejected")
	}
	return a, nil
}
