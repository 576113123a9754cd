// Package store provides the durable key-value store holding the swapper's counters.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CounterStore is a minimal durable key-value store
type CounterStore interface {
	// Get returns the value stored under key and false when the key does not exist
	Get(ctx context.Context, key string) (string, bool, error)
	// Set durably stores value under key
	Set(ctx context.Context, key, value string) error
	// Ping checks the store is reachable
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the store described by rawURL, every key is prefixed with prefix
func Open(ctx context.Context, rawURL string, prefix string) (CounterStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "redis", "rediss", "unix":
		return NewRedisStore(ctx, rawURL, prefix)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, rawURL, prefix)
	case "memory":
		return NewMemoryStore(prefix), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}
