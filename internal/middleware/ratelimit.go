package middleware

import (
	"fmt"
	"log"
	"time"

	"adminportal/internal/caching"
	"adminportal/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimiter applies redis-backed fixed-window limits per client IP.
// Independent of the login lockout tracker.
type RateLimiter struct {
	cache caching.CacheService
}

func NewRateLimiter(cache caching.CacheService) *RateLimiter {
	return &RateLimiter{cache: cache}
}

// PerIP limits requests to `limit` per `window` for each client IP on the
// wrapped route. Fails open when redis is unreachable.
func (m *RateLimiter) PerIP(name string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s", name, c.RealIP())
			limited, err := m.cache.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				log.Printf("WARN: rate limit check failed for %s: %v", key, err)
				return next(c)
			}
			if limited {
				return common.SendRateLimitError(c, window)
			}
			return next(c)
		}
	}
}
