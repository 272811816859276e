package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores each key as a plain redis string under a common prefix.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisBackend(client *redis.Client, prefix string, timeout time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, timeout: timeout}
}

func (b *RedisBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	val, err := b.client.Get(ctx, b.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	return b.client.Set(ctx, b.prefix+key, value, 0).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	return b.client.Del(ctx, b.prefix+key).Err()
}
