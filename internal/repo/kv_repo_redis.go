package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"person-registry/internal/domain"
)

type RedisKV struct{ rdb redis.Cmdable }

func NewRedisKV(rdb redis.Cmdable) *RedisKV { return &RedisKV{rdb: rdb} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	return v, true, nil
}

// Set 不设过期，和 localStorage 一样长期保存
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	return nil
}
