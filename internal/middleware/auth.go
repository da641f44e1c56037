package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// APIKeyAuth authenticates requests with a bearer API key. The key is
// hashed and looked up against store-scoped permission records; the
// matching store is placed on the context for the tenant check.
func APIKeyAuth(keys repository.APIKeyRepository, logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("component", "auth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Bearer API key is required",
			})
			return
		}

		rawKey := strings.TrimPrefix(header, "Bearer ")
		key, err := keys.GetByHash(models.HashAPIKey(rawKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid API key",
			})
			return
		}
		if !key.Valid(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "API key is inactive or expired",
			})
			return
		}

		if err := keys.TouchLastUsed(key); err != nil {
			log.WithError(err).Debug("Failed to stamp api key usage")
		}

		c.Set("auth_store_id", key.StoreID)
		c.Set("api_key", key)
		c.Next()
	}
}

// RequireScope enforces that the authenticated key carries a scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get("api_key")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
			return
		}
		key := value.(*models.APIKey)
		if !key.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "API key lacks the required scope: " + scope,
			})
			return
		}
		c.Next()
	}
}
