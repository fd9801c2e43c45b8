package util

import (
	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/models"
)

// Context keys set by the auth middleware
const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// It responds with 401 when no user is present.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(ContextUserKey)
	if !exists {
		RespondUnauthorized(c)
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		RespondUnauthorized(c)
		return nil, false
	}
	return userPtr, true
}

// GetUserIDFromContext extracts the user ID from the Gin context.
// It responds with 401 when no user is present.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserIDKey)
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}
