package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig bounds model-backed requests per user.
type RateLimitConfig struct {
	MaxGenerations int
	Window         time.Duration
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxGenerations: 30,
		Window:         time.Minute,
	}
}

// RateLimiter counts model-backed requests in fixed windows.
type RateLimiter struct {
	rdb    *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.MaxGenerations <= 0 || config.Window <= 0 {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{rdb: rdb, config: config}
}

func rateKey(subject string) string {
	return fmt.Sprintf("%s:rate:generation:%s", keyPrefix, subject)
}

// Allow records one request for subject and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, errRedisUnavailable
	}

	key := rateKey(subject)
	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	// Set expiration if first time
	if count == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(rl.config.MaxGenerations), nil
}
