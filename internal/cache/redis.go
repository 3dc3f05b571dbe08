package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared across API instances.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string, logger *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, logger: logger}, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error { return r.client.Close() }

// Get retrieves a cached value; the ETag is recomputed from the bytes.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, string, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed", "key", key, "error", err)
		}
		return nil, "", false
	}
	return data, ComputeETag(data), true
}

// Set stores a value with a TTL. Write failures are logged, not returned;
// the response is still served.
func (r *Redis) Set(ctx context.Context, key string, data []byte, ttl time.Duration) string {
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", "key", key, "error", err)
	}
	return ComputeETag(data)
}

// Stats reports connection health and key count.
func (r *Redis) Stats(ctx context.Context) map[string]any {
	out := map[string]any{"backend": "redis", "enabled": true}
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		out["error"] = err.Error()
		return out
	}
	out["total_keys"] = n
	return out
}
