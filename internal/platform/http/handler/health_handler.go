// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout は依存先1件あたりの疎通確認の上限時間です。
const pingTimeout = 2 * time.Second

// Check は /healthz で確認する依存先（DB、Redisなど）を表します。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz ハンドラーを返します。
// GET では各依存先に ping し、1つでも失敗すれば 503 を返します。
// HEAD/OPTIONS は依存先を確認せず、キャッシュを防止したうえで即座に応答します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
			return
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, chk := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			err := chk.Ping(ctx)
			cancel()
			if err != nil {
				slog.Warn("health check failed", "dependency", chk.Name, "error", err)
				results[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
