package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableorder-api/pkg/ratelimit"
)

// RateLimitKey picks the bucket for a request: the admin user, then the
// table session, then the client IP.
func RateLimitKey(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uuid.UUID); ok {
			return "user:" + id.String()
		}
	}
	if sessionID := c.GetString("session_id"); sessionID != "" {
		return "session:" + sessionID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit applies a keyed token bucket to every request
func RateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := RateLimitKey(c)
		limit := strconv.Itoa(limiter.Burst())

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}
