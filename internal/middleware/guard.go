package middleware

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-events/backend/internal/roles"
	"github.com/campus-events/backend/pkg/response"
)

// protectedPrefixes are first path segments that require the caller's
// normalized role to equal the segment.
var protectedPrefixes = map[string]struct{}{
	roles.Student: {},
	roles.Staff:   {},
	roles.Admin:   {},
}

// skipPrefixes bypass the prefix guard entirely.
var skipPrefixes = map[string]struct{}{
	"api":    {},
	"auth":   {},
	"req":    {},
	"users":  {},
	"ping":   {},
	"static": {},
	"":       {},
}

// PrefixGuard enforces the path-prefix role contract: a request whose first
// URL segment is "student", "staff" or "admin" is rejected unless the caller's
// normalized role equals that segment. OPTIONS preflight always passes.
func PrefixGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		path := strings.TrimPrefix(c.Request.URL.Path, "/")
		first := strings.ToLower(strings.SplitN(path, "/", 2)[0])
		if _, ok := skipPrefixes[first]; ok {
			c.Next()
			return
		}
		if _, ok := protectedPrefixes[first]; ok {
			role := CurrentRole(c)
			if role != first {
				response.ForbiddenRole(c, role, first)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// RequireAuth returns a middleware that rejects callers without a session identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserID); !ok {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that allows only the given roles
// (compared after normalization).
func RequireRole(allowed ...string) gin.HandlerFunc {
	allowedNorm := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedNorm[roles.Normalize(r)] = struct{}{}
	}
	names := make([]string, 0, len(allowedNorm))
	for r := range allowedNorm {
		names = append(names, r)
	}
	sort.Strings(names)
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if _, ok := allowedNorm[role]; !ok {
			response.ForbiddenRole(c, role, names...)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's ID. Only valid after RequireAuth.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}

// Username returns the authenticated caller's username. Only valid after RequireAuth.
func Username(c *gin.Context) string {
	return c.MustGet(ContextUsername).(string)
}
