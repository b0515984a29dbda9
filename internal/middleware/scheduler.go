package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const schedulerKeyHeader = "X-Scheduler-Key"

// RequireSchedulerKey guards the pipeline trigger with a shared key so only
// the external scheduler can start a run. An empty configured key disables
// the check (local development).
func RequireSchedulerKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(schedulerKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid scheduler key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
