package redis

import (
	"context"
	"fmt"

	"social-dashboard/config"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// NewClient connects to redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Address, err)
	}

	log.Info().Str("address", cfg.Address).Int("db", cfg.DB).Msg("Connected to Redis successfully")
	return rdb, nil
}
