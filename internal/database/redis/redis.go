package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"docqa/internal/config"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient creates the singleton Redis connection used by the embedding
// cache on first call and returns it afterwards.
func GetClient(cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}

		client = rdb
	})
	return client, initErr
}

// HealthCheck pings the cache.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return client.Ping(ctx).Err()
}

// Close shuts the singleton connection down.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
