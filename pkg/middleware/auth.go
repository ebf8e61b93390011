package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey   = "claims"
	UserIDKey   = "userID"
	RawTokenKey = "accessToken"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Revocations reports access tokens revoked before their expiry (logout).
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>" or an "x-auth-token" header.
// Missing token -> 401, bad or expired token -> 403, revoked token -> 401.
// revoked may be nil.
func AuthMiddleware(ver Verifier, revoked Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), raw)
			if err != nil {
				logger.Warnf("auth: blacklist lookup failed: %v", err)
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
		id, _ := claims["id"].(string)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, id)
		c.Set(RawTokenKey, raw)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return strings.TrimSpace(c.GetHeader("x-auth-token"))
}

// Claims returns the verified claims map, or nil outside AuthMiddleware.
func Claims(c *gin.Context) map[string]interface{} {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]interface{})
	return m
}

// ClaimString reads a string claim.
func ClaimString(c *gin.Context, key string) string {
	s, _ := Claims(c)[key].(string)
	return s
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
