// Package middleware attaches the per-client navigation session to each request.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"
	jwtmw "crop_yield/internal/platform/jwt"
)

// CookieName is the cookie that carries the signed session token.
const CookieName = "cy_session"

const sessionKey = "navigation.session"

// TokenCodec signs session ids into tokens and back.
// Following Go convention: interfaces are defined by the consumer, not the provider.
type TokenCodec interface {
	Issue(sessionID string) (string, error)
	Parse(token string) (string, error)
	// NeedsRefresh reports whether a valid token is close enough to expiry to be re-issued.
	NeedsRefresh(token string) bool
}

// SessionStarter creates fresh sessions on the configured initial page.
type SessionStarter interface {
	NewSession(id string) *entity.Session
}

// Options configure the session cookie.
//
// The token lifetime is sliding: a request presenting a token past half of its
// lifetime receives a re-issued cookie. ReadOnly sessions are loaded but never
// saved, and a request without a usable token gets a throwaway session with no cookie.
type Options struct {
	TTL      time.Duration
	Secure   bool
	ReadOnly bool
}

// Session loads the session named by the request's token, or starts a new one when the
// token is missing, forged, expired or points at a session the store no longer has.
// The session is saved after the handler chain has run. Requests on the same session
// are handled one at a time.
func Session(store usecase.SessionStore, tokens TokenCodec, starter SessionStarter, opts Options) gin.HandlerFunc {
	locks := newSessionLocks()

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := jwtmw.TokenFromRequest(c, CookieName)
		s, unlock, err := load(ctx, c, store, tokens, raw, locks, !opts.ReadOnly)
		switch {
		case err == nil:
			defer unlock()
			if !opts.ReadOnly && tokens.NeedsRefresh(raw) && !setCookie(c, tokens, s.ID, opts) {
				return
			}
		case opts.ReadOnly:
			s = starter.NewSession(uuid.NewString())
		default:
			s = starter.NewSession(uuid.NewString())
			if !setCookie(c, tokens, s.ID, opts) {
				return
			}
			slog.Debug("session started", "session_id", s.ID, "page", s.Page, "remote_addr", c.ClientIP())
		}

		c.Set(sessionKey, s)
		c.Next()

		if opts.ReadOnly {
			return
		}
		s.UpdatedAt = time.Now()
		if err := store.Save(ctx, s); err != nil {
			if errors.Is(err, usecase.ErrSessionConflict) {
				slog.Warn("session changed by another request; update dropped", "session_id", s.ID, "remote_addr", c.ClientIP())
				return
			}
			slog.Error("failed to save session", "error", err, "session_id", s.ID, "remote_addr", c.ClientIP())
		}
	}
}

// setCookie issues a token for id and sets it as the session cookie. It aborts the
// request and returns false when the token cannot be signed.
func setCookie(c *gin.Context, tokens TokenCodec, id string, opts Options) bool {
	token, err := tokens.Issue(id)
	if err != nil {
		slog.Error("failed to issue session token", "error", err, "remote_addr", c.ClientIP())
		c.AbortWithStatus(http.StatusInternalServerError)
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
	return true
}

// load resolves raw to a stored session. When exclusive is set the session's lock is
// taken before the read and handed back through the returned unlock.
func load(ctx context.Context, c *gin.Context, store usecase.SessionStore, tokens TokenCodec, raw string, locks *sessionLocks, exclusive bool) (*entity.Session, func(), error) {
	if raw == "" {
		return nil, nil, errors.New("no session token")
	}
	id, err := tokens.Parse(raw)
	if err != nil {
		slog.Warn("rejected session token", "error", err, "remote_addr", c.ClientIP())
		return nil, nil, err
	}

	unlock := func() {}
	if exclusive {
		unlock = locks.lock(id)
	}
	s, err := store.Get(ctx, id)
	if err != nil {
		unlock()
		if !errors.Is(err, usecase.ErrSessionNotFound) {
			slog.Error("failed to load session", "error", err, "session_id", id, "remote_addr", c.ClientIP())
		}
		return nil, nil, err
	}
	return s, unlock, nil
}

// SessionFrom returns the session attached by Session. It panics when the middleware
// is not installed, which is a wiring bug.
func SessionFrom(c *gin.Context) *entity.Session {
	return c.MustGet(sessionKey).(*entity.Session)
}

// ViewData returns the template data every page needs, merged with extra.
// The pending flash message is consumed.
func ViewData(c *gin.Context, extra gin.H) gin.H {
	s := SessionFrom(c)
	data := gin.H{
		"Title":         "",
		"Flash":         s.TakeFlash(),
		"Error":         "",
		"Authenticated": s.Authenticated,
		"Username":      s.Username,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
