package middleware

import (
	"github.com/google/wire"
	"github.com/cascadeslots/engine/internal/config"
	infraCache "github.com/cascadeslots/engine/internal/infra/cache"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// ProviderSet is the Wire provider set for middleware
var ProviderSet = wire.NewSet(
	ProvideRateLimiter,
)

// ProvideRateLimiter creates a new rate limiter instance
func ProvideRateLimiter(cfg *config.Config, log *logger.Logger) *RateLimiter {
	redisClient, err := infraCache.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis for rate limiting, rate limiting will be disabled")
		return NewRateLimiter(nil, RateLimiterConfig{RPS: 50}, log)
	}

	log.Info().Msg("rate limiter initialized with Redis")

	return NewRateLimiter(redisClient, RateLimiterConfig{RPS: 50}, log)
}
