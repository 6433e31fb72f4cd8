package factory

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"deskgate/internal/config"
	"deskgate/pkg/errors"
)

// CreateRedisClient creates a Redis client from configuration and checks
// that the server answers
func CreateRedisClient(ctx context.Context, cfg *config.Redis, logger *slog.Logger) (*redis.Client, error) {
	if cfg == nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "Redis configuration is nil")
	}

	opts := redisOptions(cfg)
	client := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.NewError(errors.ErrorTypeUnavailable, "failed to connect to Redis").WithCause(err)
	}

	logger.Info("Connected to Redis",
		"addr", opts.Addr,
		"db", opts.DB,
		"poolSize", opts.PoolSize,
	)

	return client, nil
}

// redisOptions converts configuration to client options, filling defaults
func redisOptions(cfg *config.Redis) *redis.Options {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}

	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  orDefault(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  orDefault(cfg.ReadTimeout, time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, time.Second),
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 20
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
