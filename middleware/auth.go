package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"invoice-extraction-platform/internal/config"
	"invoice-extraction-platform/utils"
)

const APIKeyHeader = "X-API-Key"

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAPIKey checks the shared-secret header on every request to
// the submission surface.
func (a *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(a.config.APIKey)) != 1 {
			utils.RespondWithForbidden(c, "API key not valid")
			c.Abort()
			return
		}
		c.Next()
	}
}
