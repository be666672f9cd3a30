package repository

import (
	"context"

	"writer-ai/internal/domain/model"
)

// SessionStore keeps client sessions in memory for the lifetime of the
// process. Get returns domain.ErrNotFound for unknown ids. Sessions come back
// as copies; changes go through Update.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	GetOrCreate(ctx context.Context, id string) (*model.Session, error)
	// Update applies fn to the stored session atomically, creating the
	// session when it does not exist.
	Update(ctx context.Context, id string, fn func(s *model.Session)) error
	Delete(ctx context.Context, id string) error
}
