package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalTokenHeader carries the shared secret for scheduler-only routes.
const InternalTokenHeader = "x-internal-token"

// InternalOnly guards routes meant for the scheduler. An empty expected token
// rejects every request.
func InternalOnly(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalTokenHeader)
		if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Internal access only"})
			return
		}
		c.Next()
	}
}
