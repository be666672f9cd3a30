package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"writer-ai/internal/domain"
	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions for the life of the process. Reads return
// copies and all writes happen under the store lock, so a long write never
// shares state with a concurrent read or sweep.
type SessionStore struct {
	mu   sync.Mutex
	byID map[string]*model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: map[string]*model.Session{}}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*model.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupOrCreate(id).Clone(), nil
}

func (s *SessionStore) Update(ctx context.Context, id string, fn func(sess *model.Session)) error {
	if strings.TrimSpace(id) == "" || fn == nil {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.lookupOrCreate(id))
	return nil
}

// lookupOrCreate must be called with mu held.
func (s *SessionStore) lookupOrCreate(id string) *model.Session {
	if sess, ok := s.byID[id]; ok {
		return sess
	}
	sess := model.NewSession(id)
	s.byID[id] = sess
	return sess
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

// Sweep drops sessions not updated since cutoff.
func (s *SessionStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.byID {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}
