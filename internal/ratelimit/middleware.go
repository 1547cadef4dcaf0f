package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stridelab/shoefit/internal/monitoring"
)

// Middleware enforces the per-IP limit, attaching the standard
// X-RateLimit headers and answering 429 when a bucket runs dry.
func (l *Limiter) Middleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := l.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))

		if !result.Allowed {
			if metrics != nil {
				metrics.IncrementRateLimited()
			}
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
