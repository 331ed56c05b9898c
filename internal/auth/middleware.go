package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// IdentityKey is where the verified identity lands in the gin context.
const IdentityKey = "identity"

// sessionTokenKey is where login stashes the token in the cookie session.
const sessionTokenKey = "token"

// Middleware verifies the bearer token and stores the identity string in
// the request context. Browsers cannot set headers on WebSocket upgrades,
// so a "token" query parameter is accepted as well, and as a last resort
// the cookie session written at login.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		}
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			if v, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
				raw = v
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}
		identity, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		c.Set(IdentityKey, string(identity))
		c.Next()
	}
}
