package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"crop_yield/internal/app/config"
	navadapters "crop_yield/internal/feature/navigation/adapters"
	navusecase "crop_yield/internal/feature/navigation/usecase"
	"crop_yield/internal/platform/session"
)

const sessionKeyPrefix = "session"

// NewSessionStore creates a SessionStore implementation.
// If Redis is requested and available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewSessionStore(kind string, rdb *redis.Client, ttl time.Duration) navusecase.SessionStore {
	if kind == config.SessionStoreRedis {
		if rdb != nil {
			return session.NewSessionRedis(rdb, sessionKeyPrefix, ttl)
		}
		slog.Warn("Redis unavailable. Falling back to in-memory sessions.")
	}
	return navadapters.NewSessionMemory(ttl)
}

// expirer is implemented by stores that do not expire entries on their own.
type expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartSessionSweeper removes expired sessions every interval until ctx is done.
// It does nothing for stores that expire entries themselves.
func StartSessionSweeper(ctx context.Context, store navusecase.SessionStore, interval time.Duration) {
	e, ok := store.(expirer)
	if !ok || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := e.DeleteExpired(ctx)
				if err != nil {
					slog.Warn("session sweep failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Debug("expired sessions removed", "count", n)
				}
			}
		}
	}()
}
