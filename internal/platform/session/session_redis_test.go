package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

// createTestSession creates a session entity for testing.
func createTestSession(id string) *entity.Session {
	y := 2.75
	return &entity.Session{
		ID:             id,
		Authenticated:  true,
		Page:           entity.PageResult,
		Username:       "farmer",
		LastPrediction: &y,
		Flash:          "Welcome, farmer!",
		UpdatedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewSessionRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.client, "client is nil")
	assert.Equal(t, "session", repo.prefix)
	assert.Equal(t, time.Hour, repo.ttl)
}

func TestSessionRedis_SaveAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)
	ctx := context.Background()
	s := createTestSession("sid-001")

	require.NoError(t, repo.Save(ctx, s))

	assert.True(t, mr.Exists("session:sid-001"))
	assert.Equal(t, time.Hour, mr.TTL("session:sid-001"))

	found, err := repo.Get(ctx, "sid-001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.True(t, found.Authenticated)
	assert.Equal(t, entity.PageResult, found.Page)
	assert.Equal(t, "farmer", found.Username)
	require.NotNil(t, found.LastPrediction)
	assert.Equal(t, 2.75, *found.LastPrediction)
	assert.Equal(t, "Welcome, farmer!", found.Flash)
	assert.True(t, s.UpdatedAt.Equal(found.UpdatedAt))
}

func TestSessionRedis_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, createTestSession("sid-001")))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "sid-001")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_GetNotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)

	found, err := repo.Get(context.Background(), "missing")

	assert.Nil(t, found)
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_GetCorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal session")
}

func TestSessionRedis_SaveRejectsEmptyID(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)

	assert.Error(t, repo.Save(context.Background(), &entity.Session{}))
	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestSessionRedis_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, createTestSession("sid-001")))

	require.NoError(t, repo.Delete(ctx, "sid-001"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	assert.False(t, mr.Exists("session:sid-001"))
}

func TestSessionRedis_SaveRejectsStaleVersion(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session", time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, createTestSession("sid-001")))

	first, err := repo.Get(ctx, "sid-001")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "sid-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	first.Authenticated = false
	first.Page = entity.PageLogin
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Page = entity.PageHome
	assert.ErrorIs(t, repo.Save(ctx, second), usecase.ErrSessionConflict)

	stored, err := repo.Get(ctx, "sid-001")
	require.NoError(t, err)
	assert.False(t, stored.Authenticated)
	assert.Equal(t, entity.PageLogin, stored.Page)
	assert.Equal(t, int64(2), stored.Version)
}

func TestSessionRedis_ConnectionErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewSessionRedis(db, "session", time.Hour)
	ctx := context.Background()
	connErr := errors.New("connection refused")

	mock.ExpectGet("session:sid-001").SetErr(connErr)
	_, err := repo.Get(ctx, "sid-001")
	assert.ErrorIs(t, err, connErr)
	assert.NotErrorIs(t, err, usecase.ErrSessionNotFound)

	mock.ExpectDel("session:sid-001").SetErr(connErr)
	assert.ErrorIs(t, repo.Delete(ctx, "sid-001"), connErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
