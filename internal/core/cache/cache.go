// Package cache defines the cache interfaces used by the service.
package cache

import (
	"context"
	"time"
)

// Type identifies a cache backend.
type Type string

const (
	// TypeRedis is the Redis cache backend.
	TypeRedis Type = "redis"
)

// Cache is the raw byte-oriented cache.
type Cache interface {
	// Get retrieves a value by key. A missing key yields (nil, nil).
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl falls back to the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping checks the cache connection.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// Client wraps Cache with JSON serialization, which is how the service
// stores classifier verdicts.
type Client interface {
	// Get retrieves a raw value by key. A missing key yields (nil, nil).
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a raw value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetJSON retrieves a value and unmarshals it into v, reporting
	// whether the key existed.
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)

	// SetJSON marshals v and stores it.
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error

	// Delete removes a key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping checks the cache connection.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
