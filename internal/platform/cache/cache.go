// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides a small JSON value cache for read-only aggregates.

The dataset is an immutable snapshot for the lifetime of a process, so any
aggregate computed from it stays valid until the snapshot is replaced. Keys
are namespaced by the snapshot fingerprint, which makes a refreshed dataset
miss every old entry without an explicit purge.

Implementations:

  - [Redis]: shared across replicas, backed by go-redis.
  - [Noop]: used when REDIS_URL is empty; every lookup misses.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by [Cache.Get] when the key is absent.
var ErrMiss = errors.New("cache: miss")

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	// Get decodes the value stored under key into target, or returns [ErrMiss].
	Get(ctx context.Context, key string, target any) error

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// # Redis

// Redis is a [Cache] backed by a go-redis client.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client; every key is stored under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Get implements [Cache].
func (r *Redis) Get(ctx context.Context, key string, target any) error {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return nil
}

// Set implements [Cache].
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}

	if err := r.client.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// # No-op

// Noop is a [Cache] that never stores anything.
type Noop struct{}

// Get implements [Cache]; it always misses.
func (Noop) Get(context.Context, string, any) error { return ErrMiss }

// Set implements [Cache]; it discards the value.
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
