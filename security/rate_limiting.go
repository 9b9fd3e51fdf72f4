// Package security holds the dev backend's abuse guards.
package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// MutationLimit caps queue mutations (create/claim/unclaim/resolve)
// per caller per minute. Callers are keyed by session cookie when
// present, IP otherwise. Redis errors fail open; losing the limiter
// must not take the queue down with it.
func (r *RateLimiter) MutationLimit(perMinute int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("ratelimit:mutate:%s", r.caller(c))

			count, err := r.redis.Incr(c.Request().Context(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(c.Request().Context(), key, time.Minute)
				}
				if count > perMinute {
					return c.JSON(http.StatusTooManyRequests, map[string]any{
						"ok":      false,
						"message": "too many requests, slow down",
					})
				}
			}
			return next(c)
		}
	}
}

func (r *RateLimiter) caller(c echo.Context) string {
	if cookie, err := c.Cookie("qstack_session"); err == nil && cookie.Value != "" {
		return "session:" + cookie.Value
	}
	return "ip:" + c.RealIP()
}
