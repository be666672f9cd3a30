package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
)

// Sweepable drops entries last touched before cutoff and reports how many.
type Sweepable interface {
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper periodically evicts idle entries from an in-process store.
type Sweeper struct {
	name     string
	interval time.Duration
	maxAge   time.Duration
	target   Sweepable
	now      func() time.Time
	log      *zerolog.Logger
}

func NewSweeper(name string, interval, maxAge time.Duration, target Sweepable, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "Sweeper").Str("store", name).Logger()
	return &Sweeper{name: name, interval: interval, maxAge: maxAge, target: target, now: time.Now, log: &l}
}

func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("starting sweeper")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("stopping sweeper")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) int {
	n, err := s.target.Sweep(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return 0
	}
	if n > 0 {
		metrics.IncSwept(s.name, n)
		s.log.Info().Int("count", n).Msg("idle entries evicted")
	}
	return n
}
