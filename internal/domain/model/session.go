package model

import "time"

// Session holds the per-user slots: one active job id and one draft.
// Both are overwritten, never merged; the last write wins.
type Session struct {
	ID          string
	ActiveJobID string
	Draft       *Output
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// SetActiveJob supersedes any previously tracked job.
func (s *Session) SetActiveJob(jobID string) {
	s.ActiveJobID = jobID
	s.UpdatedAt = time.Now()
}

func (s *Session) SetDraft(o *Output) {
	s.Draft = o
	s.UpdatedAt = time.Now()
}

// Clear drops the draft and forgets the active job. The worker is not told;
// there is no way to cancel an accepted job.
func (s *Session) Clear() {
	s.ActiveJobID = ""
	s.Draft = nil
	s.UpdatedAt = time.Now()
}

// Clone returns a copy safe to hand out of a store. The draft is shared:
// an Output is not modified once stored.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
