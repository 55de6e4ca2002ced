// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/platform/ctxutil"
	"github.com/taibuivan/ficdex/pkg/uuidv7"
)

func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	id := uuidv7.New()
	ctx = ctxutil.WithRequestID(ctx, id)
	assert.Equal(t, id, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger checks the fallback to slog.Default and that a request
scoped logger keeps its attributes when read back.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	var buf bytes.Buffer
	scoped := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("request_id", "r-1"))
	ctx = ctxutil.WithLogger(ctx, scoped)

	ctxutil.GetLogger(ctx).Info("search_executed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r-1", entry["request_id"])
	assert.Equal(t, "search_executed", entry["msg"])
}
