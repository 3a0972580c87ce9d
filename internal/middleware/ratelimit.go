package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freestay/backend/pkg/response"
)

// Limiter counts a hit for key and reports whether it is within the limit.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

// RateLimit rejects clients over the limiter's budget with 429. Limiter errors let the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err), zap.String("client_ip", c.ClientIP()))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			response.TooManyRequests(c, "too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
