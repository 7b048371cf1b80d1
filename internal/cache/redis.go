package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisKey is the Redis key holding the testimonial snapshot.
	DefaultRedisKey = "visaserbia:testimonials"

	// DefaultRedisTTL bounds how long a snapshot survives in Redis when the
	// application stops refreshing it.
	DefaultRedisTTL = 24 * time.Hour
)

// RedisCache implements Cache using Redis for distributed storage.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		key:    DefaultRedisKey,
		ttl:    DefaultRedisTTL,
	}, nil
}

// Get retrieves the snapshot from Redis.
func (c *RedisCache) Get(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // no snapshot yet
		}
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot from redis: %w", err)
	}
	return &snap, nil
}

// Set stores the snapshot in Redis with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot to redis: %w", err)
	}
	return nil
}

// Invalidate deletes the snapshot key.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot from redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
