package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys under which the middleware stores the verified identity.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RolesKey    = "roles"
)

// Middleware gates HTTP routes behind JWT validation. Expects the
// standard "Bearer <token>" Authorization header and injects the
// verified identity into the gin context for downstream handlers.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization token is missing"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}
