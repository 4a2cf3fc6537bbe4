package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toolscout-core/server/internal/agent/model"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// RedisSessionStore reads sessions written by the account service as hashes
// with the fields authenticated, plan_active and nickname.
type RedisSessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionStore(rdb redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionStore) sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Resolve returns an anonymous session for unknown or empty ids.
func (r *RedisSessionStore) Resolve(ctx context.Context, id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, nil
	}
	key := r.sessionKey(id)
	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{ID: id}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return model.Session{ID: id}, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return model.Session{ID: id}, nil
	}
	return model.Session{
		ID:            id,
		Authenticated: parseBool(fields["authenticated"]),
		PlanActive:    parseBool(fields["plan_active"]),
		Nickname:      fields["nickname"],
	}, nil
}

// Save writes a session hash and refreshes its TTL.
func (r *RedisSessionStore) Save(ctx context.Context, s model.Session) error {
	key := r.sessionKey(s.ID)
	if err := r.rdb.HSet(ctx, key,
		"authenticated", strconv.FormatBool(s.Authenticated),
		"plan_active", strconv.FormatBool(s.PlanActive),
		"nickname", s.Nickname,
	).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session to redis")
		return errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
		}
	}
	return nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

var _ model.SessionResolver = (*RedisSessionStore)(nil)
