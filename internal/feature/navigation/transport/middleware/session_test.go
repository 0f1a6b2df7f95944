package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop_yield/internal/feature/navigation/adapters"
	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"
	jwtmw "crop_yield/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// failingStore is a SessionStore whose Get always errors.
type failingStore struct {
	usecase.SessionStore
	err error
}

func (f failingStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	return nil, f.err
}

func setupRouter(store usecase.SessionStore) (*gin.Engine, *jwtmw.SessionTokens) {
	tokens := jwtmw.NewSessionTokens("test-secret", time.Hour)
	machine := usecase.NewMachine(true)

	r := gin.New()
	r.Use(Session(store, tokens, machine, Options{TTL: time.Hour}))
	r.GET("/whoami", func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": s.ID, "page": s.Page, "authenticated": s.Authenticated})
	})
	r.POST("/touch", func(c *gin.Context) {
		s := SessionFrom(c)
		s.Page = entity.PageAbout
		s.Flash = "hello"
		c.Status(http.StatusNoContent)
	})
	r.GET("/view", func(c *gin.Context) {
		c.JSON(http.StatusOK, ViewData(c, gin.H{"Title": "About"}))
	})
	return r, tokens
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestSession_StartsNewSession(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	r, tokens := setupRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)

	id, err := tokens.Parse(ck.Value)
	require.NoError(t, err)
	saved, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.PageLogin, saved.Page, "gated sessions start on login")
}

func TestSession_ReusesAndSavesSession(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	r, tokens := setupRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/touch", nil))
	ck := sessionCookie(t, w)
	id, err := tokens.Parse(ck.Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(ck)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Result().Cookies(), "an existing session keeps its cookie")
	assert.Contains(t, w.Body.String(), `"Flash":"hello"`)
	assert.Contains(t, w.Body.String(), `"Title":"About"`)

	saved, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.PageAbout, saved.Page)
	assert.Empty(t, saved.Flash, "flash is shown once")
}

func TestSession_BearerHeader(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	r, tokens := setupRouter(store)

	s := &entity.Session{ID: "api-client", Authenticated: true, Page: entity.PageHome}
	require.NoError(t, store.Save(context.Background(), s))
	token, err := tokens.Issue("api-client")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"id":"api-client"`)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestSession_ForgedOrStaleTokenStartsFresh(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	r, tokens := setupRouter(store)
	stale, err := tokens.Issue("gone")
	require.NoError(t, err)

	for name, value := range map[string]string{"forged": "not.a.token", "stale": stale} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			ck := sessionCookie(t, w)
			assert.NotEqual(t, value, ck.Value)
			assert.NotContains(t, w.Body.String(), `"id":"gone"`)
		})
	}
}

func TestSession_StoreErrorStartsFresh(t *testing.T) {
	inner := adapters.NewSessionMemory(time.Hour)
	store := failingStore{SessionStore: inner, err: errors.New("redis down")}
	r, tokens := setupRouter(store)
	token, err := tokens.Issue("whatever")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sessionCookie(t, w)
}

// refreshingCodec wraps real tokens and reports every token as due for refresh.
type refreshingCodec struct {
	*jwtmw.SessionTokens
	issued atomic.Int32
}

func (r *refreshingCodec) Issue(id string) (string, error) {
	r.issued.Add(1)
	return r.SessionTokens.Issue(id)
}

func (r *refreshingCodec) NeedsRefresh(string) bool { return true }

func TestSession_RefreshesAgingToken(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	codec := &refreshingCodec{SessionTokens: jwtmw.NewSessionTokens("test-secret", time.Hour)}
	r := gin.New()
	r.Use(Session(store, codec, usecase.NewMachine(false), Options{TTL: time.Hour}))
	r.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, SessionFrom(c).ID) })

	require.NoError(t, store.Save(context.Background(), &entity.Session{ID: "old", Page: entity.PageHome}))
	token, err := codec.SessionTokens.Issue("old")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "old", w.Body.String())
	ck := sessionCookie(t, w)
	id, err := codec.Parse(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, "old", id, "the refreshed token names the same session")
	assert.EqualValues(t, 1, codec.issued.Load())
}

func TestSession_ReadOnlyNeverPersists(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	tokens := jwtmw.NewSessionTokens("test-secret", time.Hour)
	r := gin.New()
	r.Use(Session(store, tokens, usecase.NewMachine(true), Options{TTL: time.Hour, ReadOnly: true}))
	r.POST("/touch", func(c *gin.Context) {
		s := SessionFrom(c)
		s.Page = entity.PageAbout
		c.JSON(http.StatusOK, gin.H{"id": s.ID, "authenticated": s.Authenticated})
	})

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/touch", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
		var body struct{ ID string }
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body.ID)
		_, err := store.Get(context.Background(), body.ID)
		assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
	})

	t.Run("existing session is read but not saved", func(t *testing.T) {
		require.NoError(t, store.Save(context.Background(), &entity.Session{ID: "api", Authenticated: true, Page: entity.PageHome}))
		token, err := tokens.Issue("api")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/touch", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"authenticated":true`)
		saved, err := store.Get(context.Background(), "api")
		require.NoError(t, err)
		assert.Equal(t, entity.PageHome, saved.Page)
	})
}

func TestSession_SerializesRequestsOnOneSession(t *testing.T) {
	store := adapters.NewSessionMemory(time.Hour)
	tokens := jwtmw.NewSessionTokens("test-secret", time.Hour)
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.Use(Session(store, tokens, usecase.NewMachine(true), Options{TTL: time.Hour}))
	r.POST("/slow", func(c *gin.Context) {
		s := SessionFrom(c)
		close(entered)
		<-release
		s.Flash = "slow"
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		s := SessionFrom(c)
		s.Authenticated = false
		s.Page = entity.PageLogin
		c.Status(http.StatusNoContent)
	})

	require.NoError(t, store.Save(context.Background(), &entity.Session{ID: "shared", Authenticated: true, Page: entity.PagePredict}))
	token, err := tokens.Issue("shared")
	require.NoError(t, err)
	post := func(path string) {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); post("/slow") }()
	<-entered
	go func() { defer wg.Done(); post("/logout") }()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	saved, err := store.Get(context.Background(), "shared")
	require.NoError(t, err)
	assert.False(t, saved.Authenticated, "logout is applied on top of the slow request")
	assert.Equal(t, entity.PageLogin, saved.Page)
	assert.Equal(t, "slow", saved.Flash)
}

func TestSessionLocks_ReleasesEntries(t *testing.T) {
	l := newSessionLocks()
	unlockA := l.lock("a")
	unlockB := l.lock("b")
	assert.Equal(t, 2, l.size())

	done := make(chan struct{})
	go func() {
		unlock := l.lock("a")
		unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second holder of the same id must wait")
	case <-time.After(20 * time.Millisecond):
	}
	unlockA()
	<-done
	unlockB()
	assert.Zero(t, l.size())
}
