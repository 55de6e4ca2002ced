// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the client behind the aggregate cache.

Ranked lists and dataset totals are full-table GROUP BYs over a dump that does
not change while a snapshot is served, so they are memoised in Redis. The
cache is optional: callers treat a failed [NewClient] as "run uncached".
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache traffic is a handful of small GET/SET calls per page render, so the
// pool stays small and timeouts are short enough that a slow Redis degrades
// to a cache miss instead of a slow page.
const (
	poolSize     = 4
	minIdleConns = 1
	dialTimeout  = time.Second
	ioTimeout    = 500 * time.Millisecond
	pingTimeout  = 2 * time.Second
)

// NewClient parses redisURL, applies the cache pool settings and verifies
// connectivity with a ping.
//
// # Parameters
//   - context: Bounds the initial ping.
//   - redisURL: e.g. redis://localhost:6379/0.
//   - logger: Receives the redis_connected event.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout
	options.MaxRetries = 1

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping backs the "redis" readiness check.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
