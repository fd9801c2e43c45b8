package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/util"
	"go.uber.org/zap"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller under util.ContextUserIDKey and util.ContextUserKey
func RequireAuth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			util.RespondUnauthorized(c)
			return
		}

		user, err := validator.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("Rejected token", zap.Error(err), logger.WithIP(c.ClientIP()))
			util.RespondUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(util.ContextUserIDKey, user.ID)
		c.Set(util.ContextUserKey, user)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header. Websocket
// upgrades cannot set headers from browsers, so ?token= is accepted too.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}
