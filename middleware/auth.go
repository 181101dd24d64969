package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextSessionKey stores the parsed session claims inside Gin context.
	ContextSessionKey = "session"
)

// PageAuthRequired guards browser pages: anonymous visitors are redirected to /auth.
func PageAuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !authenticate(ctx) {
			ctx.Redirect(http.StatusFound, "/auth")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// AuthRequired guards JSON endpoints and answers 401 when no valid session is present.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !authenticate(ctx) {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// authenticate resolves the session from the cookie or a Bearer header and stores the user id.
func authenticate(ctx *gin.Context) bool {
	token := SessionToken(ctx)
	if token == "" {
		return false
	}
	claims, err := utils.ParseSession(token)
	if err != nil {
		return false
	}
	if utils.IsSessionRevoked(claims.ID) {
		return false
	}
	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextSessionKey, claims)
	return true
}

// SessionToken returns the raw session token, preferring the cookie.
func SessionToken(ctx *gin.Context) string {
	if c, err := ctx.Cookie(config.Get().SessionCookie); err == nil && c != "" {
		return c
	}
	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
