package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key under which Middleware stores the
// verified Identity.
const IdentityKey = "auth.identity"

// Middleware rejects requests without a valid Bearer token and stores the
// verified identity in the request context.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		credential, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		id, err := v.Verify(c.Request.Context(), credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(IdentityKey, id)
		c.Next()
	}
}

// IdentityFrom extracts the verified identity placed by Middleware, if any.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	val, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := val.(*Identity)
	return id, ok
}
