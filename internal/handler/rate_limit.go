package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lingualearn/auth-service/internal/dto"
	"github.com/lingualearn/auth-service/internal/service"
)

// RateLimitMiddleware throttles requests per client IP. The limiter is a
// shared Redis window, so the limit holds across replicas. A Redis failure
// fails open: auth availability beats throttling.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		allowed, retryAfter, err := rateLimiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable",
				zap.String("ip", key),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)+1))
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded, slow down",
			})
			c.Abort()
			return
		}

		if remaining, err := rateLimiter.Remaining(c.Request.Context(), key); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}
