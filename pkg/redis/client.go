package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get and GetState when the key does not exist.
var ErrNotFound = errors.New("redis: key not found")

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis client. ttl applies to chat state.
func New(addr, password string, db int, ttl time.Duration) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     20,
			MinIdleConns: 2,
		}),
		ttl: ttl,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Expire sets a key's time to live (TTL)
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return c.client.Expire(ctx, key, expiration).Result()
}

// Incr increments the key's value by 1. Returns the new value and any error
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Get retrieves a key's value
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Set sets a key's value with TTL
func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Allow counts one hit against key and reports whether the count is still
// within limit for the current window. The window starts on the first hit.
func (c *Client) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := c.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if _, err := c.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}
	return count <= limit, nil
}

func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// SaveState saves chat state as JSON, refreshing its TTL.
func (c *Client) SaveState(ctx context.Context, chatID int64, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return c.client.Set(ctx, stateKey(chatID), data, c.ttl).Err()
}

// GetState loads chat state into state. A missing key yields ErrNotFound.
func (c *Client) GetState(ctx context.Context, chatID int64, state any) error {
	data, err := c.Get(ctx, stateKey(chatID))
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	return nil
}

// ClearState removes chat state from Redis
func (c *Client) ClearState(ctx context.Context, chatID int64) error {
	return c.client.Del(ctx, stateKey(chatID)).Err()
}

func stateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
