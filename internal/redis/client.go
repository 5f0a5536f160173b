package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidaclinic/clinic-agenda/internal/config"
)

// NewRedisClient connects to the lock store. Read/write timeouts are kept
// below the agenda lock TTL so a stalled command cannot outlive the lock it
// was trying to take.
func NewRedisClient(cfg config.Config) (*redis.Client, error) {
	opTimeout := cfg.LockTTL / 2
	if opTimeout <= 0 || opTimeout > 2*time.Second {
		opTimeout = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           0,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}
