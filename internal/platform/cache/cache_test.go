// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/platform/cache"
)

func TestNoop(t *testing.T) {
	var c cache.Cache = cache.Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 42, time.Minute))

	var got int
	assert.ErrorIs(t, c.Get(ctx, "k", &got), cache.ErrMiss)
	assert.Zero(t, got)
}

/*
TestRedis_Unreachable verifies that transport errors surface as errors, not
as misses, so callers can log them.
*/
func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := cache.NewRedis(client, "test:")
	ctx := context.Background()

	var got int
	err := c.Get(ctx, "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)

	assert.Error(t, c.Set(ctx, "k", 1, time.Minute))
}
