package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/infra/logging"
)

const maxSourceBody = 1 << 20

type writeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var draft *model.Output
	if id, ok := s.sessions.Lookup(r); ok {
		if out, err := s.writer.Current(r.Context(), id); err == nil {
			draft = out
		}
	}
	renderPage(w, pageData{Draft: draft, Band: s.band})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	text, err := readSource(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessID, err := s.sessions.Resolve(w, r)
	if err != nil {
		s.internal(w, r, err)
		return
	}
	ctx := logging.WithSessID(r.Context(), sessID)

	out, err := s.writer.Write(ctx, sessID, text)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, domain.ErrEmptySource):
		writeError(w, http.StatusBadRequest, "text is empty")
	case errors.Is(err, domain.ErrJobTimedOut):
		logging.With(ctx, s.log).Warn().Err(err).Msg("generation timed out")
		writeError(w, http.StatusGatewayTimeout, "generation did not finish in time")
	case errors.Is(err, domain.ErrGeneration):
		// the cause may name the worker address or job id; keep it in the log
		logging.With(ctx, s.log).Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusBadGateway, "generation failed")
	default:
		s.internal(w, r.WithContext(ctx), err)
	}
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	out, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	out, ok := s.current(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename()}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Full))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.sessions.Lookup(r); ok {
		if err := s.writer.Clear(r.Context(), id); err != nil {
			s.internal(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) (*model.Output, bool) {
	id, ok := s.sessions.Lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no output yet")
		return nil, false
	}
	out, err := s.writer.Current(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no output yet")
			return nil, false
		}
		s.internal(w, r, err)
		return nil, false
	}
	return out, true
}

func (s *Server) internal(w http.ResponseWriter, r *http.Request, err error) {
	logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// readSource accepts a JSON body {"text": ...} or a plain form post.
func readSource(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBody)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.FormValue("text"), nil
	default:
		var req writeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("decode: %w", err)
		}
		return req.Text, nil
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}
