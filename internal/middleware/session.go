package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/roles"
	"github.com/campus-events/backend/internal/session"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUsername is the key for username in gin context.
	ContextUsername = "username"
	// ContextUserType is the key for the raw stored role string in gin context.
	ContextUserType = "user_type"
	// ContextUserRole is the key for the normalized role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// Session returns a middleware that resolves the session cookie and, when a
// valid session exists, sets the caller's identity and roles in the gin
// context. Requests without a session pass through as guests; strict
// authentication is enforced per-route by RequireAuth.
func Session(store *session.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(store.CookieName())
		if err != nil || token == "" {
			c.Next()
			return
		}
		data, err := store.Get(c.Request.Context(), token)
		if err != nil {
			logger.Warn("session lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if data == nil {
			c.Next()
			return
		}
		c.Set(ContextUserID, data.UserID)
		c.Set(ContextUsername, data.Username)
		c.Set(ContextUserType, data.Type)
		c.Set(ContextUserRole, data.Role)
		c.Set(ContextUserEmail, data.Email)
		c.Next()
	}
}

// CurrentRole returns the caller's normalized role, guest when unauthenticated.
func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(string); ok && role != "" {
			return role
		}
	}
	if v, ok := c.Get(ContextUserType); ok {
		if t, ok := v.(string); ok {
			return roles.Normalize(t)
		}
	}
	return roles.Guest
}
