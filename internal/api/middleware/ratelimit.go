package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

// RecommendationRateLimit rejects requests once a user exhausts their
// per-minute recommendation budget. Must run after auth so user_id is set.
func RecommendationRateLimit(limiter *services.RecommendationRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}
		uid, ok := userID.(uint)
		if !ok {
			c.Next()
			return
		}

		if !limiter.Allow(c.Request.Context(), uid) {
			utils.SendRateLimited(c, "Recommendation rate limit exceeded, try again shortly")
			c.Abort()
			return
		}

		c.Next()
	}
}
