// Package adapters provides session store implementations for the navigation feature.
package adapters

import (
	"context"
	"sync"
	"time"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"
)

// defaultTTL is used when NewSessionMemory is given a non-positive ttl.
const defaultTTL = 24 * time.Hour

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

// sessionMemory is an in-process SessionStore. Sessions are lost on restart.
type sessionMemory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// Compile-time check to ensure sessionMemory implements SessionStore.
var _ usecase.SessionStore = (*sessionMemory)(nil)

// NewSessionMemory creates a new instance of sessionMemory.
func NewSessionMemory(ttl time.Duration) *sessionMemory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &sessionMemory{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a copy of the stored session so callers cannot mutate shared state.
func (r *sessionMemory) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, usecase.ErrSessionNotFound
	}
	if r.now().After(e.expiresAt) {
		delete(r.items, id)
		return nil, usecase.ErrSessionNotFound
	}
	s := cloneSession(e.session)
	return &s, nil
}

// Save stores a copy of the session and refreshes its expiry.
func (r *sessionMemory) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.items[session.ID]; ok && !now.After(e.expiresAt) && e.session.Version != session.Version {
		return usecase.ErrSessionConflict
	}
	session.Version++
	r.items[session.ID] = memoryEntry{
		session:   cloneSession(*session),
		expiresAt: now.Add(r.ttl),
	}
	return nil
}

// Delete removes the session.
func (r *sessionMemory) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

// DeleteExpired drops every expired session and returns how many were removed.
func (r *sessionMemory) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := r.now()
	for id, e := range r.items {
		if now.After(e.expiresAt) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func cloneSession(s entity.Session) entity.Session {
	if s.LastPrediction != nil {
		y := *s.LastPrediction
		s.LastPrediction = &y
	}
	return s
}
