// File: internal/usecase/writer_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/repository"
	"writer-ai/internal/infra/logging"
)

// Compile-time check
var _ WriterUseCase = (*writerUC)(nil)

type WriterUseCase interface {
	// Write runs a length-targeted generation for source and stores the
	// output as the session's draft.
	Write(ctx context.Context, sessionID, source string) (*model.Output, error)
	Current(ctx context.Context, sessionID string) (*model.Output, error)
	Clear(ctx context.Context, sessionID string) error
}

type WriterOptions struct {
	Band       model.LengthBand
	MaxRetries int
	Location   *time.Location
	Now        func() time.Time
	Dev        bool
}

type writerUC struct {
	sessions   repository.SessionStore
	generators GeneratorFactory
	opts       WriterOptions
	log        *zerolog.Logger
}

func NewWriterUseCase(sessions repository.SessionStore, generators GeneratorFactory, opts WriterOptions, log *zerolog.Logger) *writerUC {
	if opts.Band == (model.LengthBand{}) {
		opts.Band = model.DefaultBand
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logging.Nop()
	}
	return &writerUC{sessions: sessions, generators: generators, opts: opts, log: log}
}

func (w *writerUC) Write(ctx context.Context, sessionID, source string) (*model.Output, error) {
	if strings.TrimSpace(source) == "" {
		return nil, domain.ErrEmptySource
	}
	sess, err := w.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSessID(ctx, sess.ID)
	log := logging.With(ctx, w.log)
	log.Info().Str("source", logging.Redact(source, w.opts.Dev)).Msg("write requested")

	tracker := JobTrackerFunc(func(ctx context.Context, jobID string) error {
		return w.sessions.Update(ctx, sess.ID, func(s *model.Session) { s.SetActiveJob(jobID) })
	})
	ctrl := NewLengthController(w.generators(tracker), w.opts.Band, w.opts.MaxRetries, log)
	res, err := ctrl.Run(ctx, source)
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		return nil, err
	}

	out := model.NewOutput(res.Title, res.Body, w.opts.Now().In(w.opts.Location))
	out.Attempts = res.Attempts
	out.Accepted = res.Accepted
	if err := w.sessions.Update(ctx, sess.ID, func(s *model.Session) { s.SetDraft(out) }); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *writerUC) Current(ctx context.Context, sessionID string) (*model.Output, error) {
	sess, err := w.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Draft == nil {
		return nil, domain.ErrNotFound
	}
	return sess.Draft, nil
}

func (w *writerUC) Clear(ctx context.Context, sessionID string) error {
	if _, err := w.sessions.Get(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return w.sessions.Update(ctx, sessionID, func(s *model.Session) { s.Clear() })
}
