package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Redis stores JSON-encoded entries in Redis with the same TTL semantics as
// the memory store, for deployments running more than one replica. Redis
// faults degrade to cache misses so the pipeline keeps working without it.
type Redis[T any] struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedis constructs a Redis store with the default TTL.
func NewRedis[T any](client *redis.Client, log *slog.Logger) *Redis[T] {
	return &Redis[T]{client: client, ttl: DefaultTTL, log: log}
}

// Get retrieves the entry stored under key. Misses and Redis errors both
// report absence.
func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis get failed", "key", key, "err", err)
		}
		return zero, false
	}

	var data T
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		r.log.Warn("unmarshaling cached entry failed", "key", key, "err", err)
		return zero, false
	}
	return data, true
}

// Put stores data under key with the configured TTL.
func (r *Redis[T]) Put(ctx context.Context, key string, data T) {
	b, err := json.Marshal(data)
	if err != nil {
		r.log.Warn("marshaling cache entry failed", "key", key, "err", err)
		return
	}

	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		r.log.Warn("redis set failed", "key", key, "err", err)
	}
}

// Clear drops every weather_* key. Uses SCAN so it stays safe against a
// shared Redis database.
func (r *Redis[T]) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, "weather_*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.Warn("redis delete failed", "key", iter.Val(), "err", err)
		}
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("redis scan failed", "err", err)
	}
}
