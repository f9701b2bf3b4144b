package storage

import (
	"context"
	"errors"

	"github.com/angelmondragon/finblog-client/pkg/redis"
)

// RedisKV is the subset of *redis.Client the redis backend needs.
type RedisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// Redis stores values in a Redis database.
type Redis struct {
	client RedisKV
}

func NewRedis(client RedisKV) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
