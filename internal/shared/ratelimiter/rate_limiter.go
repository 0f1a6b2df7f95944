// Package ratelimiter はクライアントごとのリクエスト頻度制限を提供します。
package ratelimiter

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTTL を超えて使われていないクライアントのリミッターは破棄されます。
const idleTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter はキー（クライアントIP等）ごとにトークンバケットを保持します。
type KeyedLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewKeyedLimiter は1分あたりperMinute回、バーストburst回まで許可するリミッターを生成します。
// perMinuteが0以下の場合は制限しません。
func NewKeyedLimiter(perMinute, burst int) *KeyedLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &KeyedLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow はキーに対するリクエストを1回消費し、許可されるかを返します。
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	// 古いエントリを掃除
	for k, other := range l.clients {
		if now.Sub(other.lastSeen) > idleTTL {
			delete(l.clients, k)
		}
	}
	return c.limiter.AllowN(now, 1)
}

// Middleware はPOSTリクエストのみをクライアントIP単位で制限するGinミドルウェアです。
// 制限を超えた場合は429を返します。
func (l *KeyedLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			slog.Warn("rate limit exceeded", "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
