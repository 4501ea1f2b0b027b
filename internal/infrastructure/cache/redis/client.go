// Package redis provides the Redis cache client implementation.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Client implements the cache.Client interface for Redis.
type Client struct {
	cache *Cache
}

// NewClient creates a new Redis cache client.
func NewClient(cfg Config) (*Client, error) {
	c, err := NewCache(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		cache: c,
	}, nil
}

// Get retrieves a value from the cache.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.cache.Get(ctx, key)
}

// Set stores a value in the cache.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.cache.Set(ctx, key, value, ttl)
}

// GetJSON retrieves a value from the cache and unmarshals it into v.
// Returns false when the key does not exist.
func (c *Client) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value for %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it in the cache.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key from the cache.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	return c.cache.Delete(ctx, key)
}

// Ping checks if the cache connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.cache.Ping(ctx)
}

// Close closes the cache client connection.
func (c *Client) Close() error {
	return c.cache.Close()
}
