package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether subject may make another model-backed request.
type Limiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// RateLimit rejects requests beyond the caller's generation budget with 429.
// When the limiter itself fails the request is let through.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		subject := UserEmail(c)
		if subject == "" {
			subject = c.ClientIP()
		}

		ok, err := limiter.Allow(c.Request.Context(), subject)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please slow down"})
			return
		}
		c.Next()
	}
}
