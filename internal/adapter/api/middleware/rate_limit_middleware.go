package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"bookshelf/internal/infrastructure/ratelimit"
	"bookshelf/pkg/logger"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

// Limit throttles the given action per caller. Authenticated callers are
// keyed by UID, anonymous ones by remote IP.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerID := c.RealIP()
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				callerID = uid
			}

			allowed, wait := m.limiter.Allow(callerID, action)
			if !allowed {
				logger.Warn("Rate limit hit: caller=%s action=%s", callerID, action)
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(wait / time.Second),
				})
			}

			return next(c)
		}
	}
}
