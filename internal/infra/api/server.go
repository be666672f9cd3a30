package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/metrics"
)

// JobService is what the worker surface needs from the job processor.
type JobService interface {
	Submit(ctx context.Context, system, user, modelName string) (*model.WorkerJob, error)
	Get(ctx context.Context, id string) (*model.WorkerJob, error)
}

// Server exposes the worker's enqueue/status/result endpoints.
type Server struct {
	jobs JobService
	log  *zerolog.Logger
}

func NewServer(jobs JobService, log *zerolog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{jobs: jobs, log: log}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/enqueue", s.handleEnqueue)
	r.Get("/status/{job_id}", s.handleStatus)
	r.Get("/result/{job_id}", s.handleResult)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())
	return Chain(r, Standard(s.log)...)
}

const maxEnqueueBody = 1 << 20

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req adapter.EnqueueRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnqueueBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := s.jobs.Submit(r.Context(), req.System, req.User, req.Model)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("enqueue failed")
		writeError(w, http.StatusInternalServerError, "could not enqueue job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": job.ID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(job.Status)})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	resp := struct {
		adapter.ResultResponse
		Error string `json:"error,omitempty"`
	}{
		ResultResponse: adapter.ResultResponse{Ready: job.Ready()},
		Error:          job.LastError,
	}
	if job.Ready() {
		resp.Result = job.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*model.WorkerJob, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "job_id"))
	job, err := s.jobs.Get(r.Context(), id)
	switch {
	case err == nil:
		return job, true
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	default:
		logging.With(logging.WithJobID(r.Context(), id), s.log).Error().Err(err).Msg("job lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
