package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"writer-ai/internal/infra/api"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
	"writer-ai/internal/usecase"
)

// Server is the browser-facing app: a single form page plus a small JSON API.
type Server struct {
	writer   usecase.WriterUseCase
	sessions *SessionManager
	band     string
	log      *zerolog.Logger
}

func NewServer(writer usecase.WriterUseCase, sessions *SessionManager, bandLabel string, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{writer: writer, sessions: sessions, band: bandLabel, log: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Post("/write", s.handleWrite)
		r.Get("/output", s.handleOutput)
		r.Get("/output/download", s.handleDownload)
		r.Post("/clear", s.handleClear)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())
	return api.Chain(r, api.Standard(s.log)...)
}
