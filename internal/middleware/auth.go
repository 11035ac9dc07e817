package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/authz"
	"github.com/askforge/askforge/internal/models"
)

// contextKeyIdentity is where the verified identity lives in the gin
// context. Handlers go through GetIdentity, never the raw key.
const contextKeyIdentity = "identity"

// AuthMiddleware validates the bearer token and stores the caller's
// identity for downstream handlers. Missing, malformed, or expired
// credentials abort the chain with 401; the handler never runs.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		identity, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(contextKeyIdentity, identity)
		c.Next()
	}
}

// RequireAdmin gates a route to admin callers. Must run after
// AuthMiddleware; the decision itself is the pure policy check.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if err := authz.RequireRole(id, models.RoleAdmin); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "only admins can perform this action",
			})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the verified identity, or nil when the route
// did not pass through AuthMiddleware.
func GetIdentity(c *gin.Context) *auth.Identity {
	val, exists := c.Get(contextKeyIdentity)
	if !exists {
		return nil
	}
	id, ok := val.(*auth.Identity)
	if !ok {
		return nil
	}
	return id
}
