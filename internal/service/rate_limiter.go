package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lingualearn/auth-service/pkg/database"
)

// RateLimiter throttles unauthenticated auth endpoints per client IP using a
// sliding window log in Redis. Limit and window are fixed at construction
// from config.
type RateLimiter struct {
	redis  *database.Redis
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

// Allow reports whether a request under the key may proceed and, when it may
// not, how long until the window frees a slot.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := r.now()
	windowStart := now.Add(-r.window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Drop entries that fell out of the window.
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli())).Err()
	if err != nil {
		return false, 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(r.limit) {
		retryAfter := r.window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.UnixMilli(int64(oldest[0].Score))
			retryAfter = r.window - now.Sub(oldestTime)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	// The member must be unique per request. A timestamp alone is not:
	// concurrent requests land on the same instant and ZAdd would collapse
	// them into a single entry, under-counting the window.
	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()),
	}).Err()
	if err != nil {
		return false, 0, fmt.Errorf("failed to add entry: %w", err)
	}

	// Keep the key from outliving an idle client.
	if err := r.redis.Client.Expire(ctx, redisKey, r.window+time.Minute).Err(); err != nil {
		return true, 0, nil
	}

	return true, 0, nil
}

// Remaining returns how many requests the key has left in the current window.
func (r *RateLimiter) Remaining(ctx context.Context, key string) (int, error) {
	windowStart := r.now().Add(-r.window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli())).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
