package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/entities"
)

const (
	// ContextUserID is the gin context key holding the authenticated user's ID.
	ContextUserID = "auth_user_id"
	// ContextUserRole is the gin context key holding the authenticated user's role.
	ContextUserRole = "auth_user_role"
)

// RequireAuth rejects requests without a valid Bearer access token and
// stores the acting user's identity in the request context.
func RequireAuth(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, role, err := issuer.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated user
// holds one of the given roles. It must run after RequireAuth.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// UserIDFromContext returns the acting user's ID set by RequireAuth.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// RoleFromContext returns the acting user's role set by RequireAuth.
func RoleFromContext(c *gin.Context) (entities.UserRole, bool) {
	v, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(entities.UserRole)
	return role, ok
}
