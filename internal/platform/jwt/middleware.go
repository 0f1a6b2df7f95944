package jwtmw

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenFromRequest returns the session token carried by the request.
// An "Authorization: Bearer" header wins over the cookie so API clients can
// reuse a token obtained from the browser flow.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}
