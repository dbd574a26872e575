package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	pkgAuth "github.com/polkiloo/flashrent/internal/pkg/auth"
)

// APIKeyHeader carries the operator API key.
const APIKeyHeader = "X-API-Key"

// APIKeyRequired rejects requests without a valid API key.
func APIKeyRequired(verifier pkgAuth.KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractKey(c)
		if key == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if err := verifier.Verify(key); err != nil {
			if errors.Is(err, domainErrors.ErrInvalidAPIKey) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Next()
	}
}

func extractKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
