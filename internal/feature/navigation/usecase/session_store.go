package usecase

import (
	"context"

	"crop_yield/internal/feature/navigation/domain/entity"
)

// SessionStore abstracts where per-client sessions live between requests.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionStore interface {
	// Get returns the session with the given id, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*entity.Session, error)

	// Save stores the session under its ID if the stored version still equals
	// session.Version, then increments session.Version. Otherwise it returns
	// ErrSessionConflict and stores nothing.
	Save(ctx context.Context, session *entity.Session) error

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
