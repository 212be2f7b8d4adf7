package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/core"
	"pocketledger/internal/log"
)

// ContextUserID is the gin context key holding the authenticated user id
const ContextUserID = "userID"

// Middleware rejects requests without a valid bearer token and stores the
// token's user id on the gin context.
func (i *Issuer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, core.Fail[any](core.ErrUnauthorized))
			return
		}

		claims, err := i.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			log.FromContext(c.Request.Context()).WithComponent(log.ComponentAuth).
				DebugContext(c.Request.Context(), "Rejected session token", log.FieldError, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, core.Fail[any](err))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside the middleware
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
