package middleware

import (
	"github.com/gin-gonic/gin"

	"brainbin/internal/ratelimit"
	"brainbin/pkg/apperrors"
)

// RateLimitMiddleware enforces the per-user sliding-window limits for
// one operation category. Must run after AuthMiddleware.
func RateLimitMiddleware(limiter *ratelimit.Limiter, category ratelimit.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			// Unauthenticated requests fall back to the client address.
			userID = "ip:" + c.ClientIP()
		}

		if ok, msg := limiter.Allow(userID, category); !ok {
			apperrors.HandleError(c, apperrors.ErrRateLimited(msg))
			c.Abort()
			return
		}
		c.Next()
	}
}
