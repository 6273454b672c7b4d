package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/proup-app/proup-api/pkg/security/auth"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per authenticated user, or per client
// IP for anonymous requests. If the limiter itself fails the request is let
// through.
func RateLimitMiddleware(limiter auth.RateLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + userID.String()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_in": time.Until(decision.ResetAt).Round(time.Second).String(),
			})
			return
		}

		c.Next()
	}
}
