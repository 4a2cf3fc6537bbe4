package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toolscout-core/server/internal/agent/model"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// RedisRateLimiter is a fixed-window counter shared by every instance.
type RedisRateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, now: time.Now}
}

func (r *RedisRateLimiter) windowKey(key string) string {
	slot := r.now().UnixNano() / int64(r.window)
	return fmt.Sprintf("ratelimit:%s:%d", key, slot)
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	k := r.windowKey(key)
	n, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to increment rate limit counter")
		return false, errx.WrapRedis(err)
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, k, r.window).Err(); err != nil {
			logx.Warn().Err(err).Str("key", k).Msg("failed to set TTL on rate limit key")
		}
	}
	return n <= int64(r.limit), nil
}

var _ model.RateLimiter = (*RedisRateLimiter)(nil)
