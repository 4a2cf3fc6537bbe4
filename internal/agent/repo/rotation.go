// Package repo holds the Redis-backed stores shared across server instances.
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

type RedisRotationStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisRotationStore(rdb redis.Cmdable, ttl time.Duration) *RedisRotationStore {
	return &RedisRotationStore{rdb: rdb, ttl: ttl}
}

func (r *RedisRotationStore) rotationKey(key string) string {
	return fmt.Sprintf("rotation:%s:cursor", key)
}

// Next advances the cursor with INCRBY so concurrent requests get distinct windows.
func (r *RedisRotationStore) Next(ctx context.Context, key string, pool, window int) (int, error) {
	if pool <= 0 {
		return 0, nil
	}
	k := r.rotationKey(key)
	n, err := r.rdb.IncrBy(ctx, k, int64(window)).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to advance rotation cursor")
		return 0, errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, k, r.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("key", k).Dur("ttl", r.ttl).Msg("failed to set TTL on rotation key")
		}
	}
	cur := (n - int64(window)) % int64(pool)
	if cur < 0 {
		cur += int64(pool)
	}
	return int(cur), nil
}

var _ model.RotationStore = (*RedisRotationStore)(nil)
