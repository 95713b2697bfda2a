// Package cache provides the TTL key-value store the HTTP layer reads
// through before calling services and invalidates after mutations.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys
type Cache interface {
	// Get returns the value and true on a hit
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) DeletePrefix(context.Context, string) error { return nil }

func (Nop) Ping(context.Context) error { return nil }
