package config

// Redis backs the seat-event fan-out and the zone seat-map cache. If
// the server is unreachable at startup the constructor returns nil and
// callers degrade gracefully: events are dropped and every browse read
// goes to the database.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the loaded config.
// The returned client may be nil if a connection cannot be established.
func NewRedisClient(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	// Ping the server with a short timeout. Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
