package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Attempts int
}

// Client wraps the Redis connection.
type Client struct {
	*goredis.Client
}

// New connects to Redis, retrying the initial ping.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	ctx = wrap.WithAction(ctx, "redis_connect")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 5
	}

	var err error
	for i := range attempts {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info(ctx, "connected to redis", "addr", cfg.Addr)
			return &Client{Client: rdb}, nil
		}

		log.Debug(ctx, "waiting for redis", "attempt", i+1, "of", attempts)
		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis: failed to connect after %d attempts: %w", attempts, err)
}
