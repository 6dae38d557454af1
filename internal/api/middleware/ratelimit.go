package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/cascadeslots/engine/internal/api/dto"
	"github.com/cascadeslots/engine/internal/infra/cache"
	"github.com/cascadeslots/engine/internal/pkg/errors"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// respondError writes an HTTPError through the shared dto.ErrorResponse
// envelope, the same shape the handler package returns on every
// non-2xx path.
func respondError(c *fiber.Ctx, err *errors.HTTPError) error {
	return c.Status(err.StatusCode).JSON(dto.ErrorResponse{
		Error:   string(err.Code),
		Message: err.Message,
		Details: err.Details,
	})
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RPS int // Requests per second per client IP and path
}

// NewRateLimiter creates a new rate limiter with Redis backend
func NewRateLimiter(redis *cache.RedisClient, config RateLimiterConfig, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		config: config,
		logger: log,
	}
}

// RateLimiter implements Redis-based rate limiting
type RateLimiter struct {
	redis  *cache.RedisClient
	config RateLimiterConfig
	logger *logger.Logger
}

// Middleware rate-limits requests per client IP and path. There is no
// authenticated/public tier split since the API has no auth layer —
// player_id is just another request field, not an identity to key on.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := rl.logger.WithTrace(c)

		if rl.redis == nil {
			return c.Next()
		}

		clientIP := c.Get("x-real-ip")
		if clientIP == "" {
			clientIP = c.IP()
		}

		path := c.Path()
		limit := rl.config.RPS
		window := time.Second

		timestamp := time.Now().Unix()
		key := fmt.Sprintf("ratelimit:%s:%s:%d", clientIP, path, timestamp)

		allowed, remaining, resetTime := rl.checkLimit(key, limit, window)

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			log.Warn().
				Str("ip", clientIP).
				Str("path", path).
				Int("limit", limit).
				Str("method", c.Method()).
				Msg("rate limit exceeded")

			return respondError(c, errors.RateLimitExceeded(int(window.Seconds())))
		}

		return c.Next()
	}
}

// checkLimit checks if the request is within rate limit
func (rl *RateLimiter) checkLimit(key string, limit int, window time.Duration) (allowed bool, remaining int, resetTime int64) {
	ctx := context.Background()

	// Increment counter
	count, err := rl.redis.Incr(ctx, key)
	if err != nil {
		// If Redis fails, allow the request (fail open)
		return true, limit, time.Now().Add(window).Unix()
	}

	// Set expiration on first request
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, window); err != nil {
			// Continue even if expire fails
		}
	}

	resetTime = time.Now().Add(window).Unix()

	// Check if limit exceeded
	if count > int64(limit) {
		return false, 0, resetTime
	}

	remaining = limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return true, remaining, resetTime
}
