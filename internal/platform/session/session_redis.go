// Package session provides the Redis-backed navigation session store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"

	"github.com/redis/go-redis/v9"
)

// SessionRedis implements usecase.SessionStore using Redis.
// Each session is one JSON value whose TTL is refreshed on every save.
type SessionRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Compile-time check to ensure SessionRedis implements SessionStore.
var _ usecase.SessionStore = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string, ttl time.Duration) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// sessionKey returns the Redis key for a session.
func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Get retrieves a session by its ID.
func (r *SessionRedis) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Save stores the session and resets its TTL. The write is a compare-and-set on
// Version under WATCH, so requests served by other instances cannot overwrite a
// newer state.
func (r *SessionRedis) Save(ctx context.Context, session *entity.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session without id")
	}
	next := *session
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := r.sessionKey(session.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var stored entity.Session
			if err := json.Unmarshal(current, &stored); err == nil && stored.Version != session.Version {
				return usecase.ErrSessionConflict
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return usecase.ErrSessionConflict
	}
	if err != nil {
		return err
	}
	session.Version = next.Version
	return nil
}

// Delete removes the session. Deleting a missing key is not an error.
func (r *SessionRedis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.sessionKey(id)).Err()
}
