package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkmarkhq/linkmark/internal/logger"
)

// ConnectOptions defines how the Redis client is built.
type ConnectOptions struct {
	Addr        string        // ex: "localhost:6379"
	Password    string        // optional
	DB          int           // Redis DB number
	PingTimeout time.Duration // timeout for the startup ping (default: 5s)
}

// New creates a Redis client and verifies connectivity with a single ping.
// The cache is optional infrastructure, so the caller decides whether a
// failure here is fatal or just means running without a cache.
func New(opts ConnectOptions, log logger.Logger) (*goredis.Client, error) {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	log.Info("connected to redis", logger.String("addr", opts.Addr))
	return client, nil
}
