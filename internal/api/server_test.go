// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/api"
	"github.com/taibuivan/ficdex/internal/core/stats"
	"github.com/taibuivan/ficdex/internal/core/story"
	"github.com/taibuivan/ficdex/internal/platform/config"
	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/dbtest"
	"github.com/taibuivan/ficdex/internal/web"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()
	db := dbtest.OpenPath(t, dbtest.NewFile(t,
		dbtest.Row{Title: "One", Author: "Jane", Language: "English", WordCount: dbtest.Int(100)},
		dbtest.Row{Title: "Two", Author: "Bob", Language: "French"},
	), database.ReadOnly())

	stories := story.NewService(story.NewSQLRepository(db), 100, quiet)
	aggregates := stats.NewService(stats.NewSQLRepository(db), nil, time.Minute, quiet)
	pages, err := web.NewHandler(stories, aggregates)
	require.NoError(t, err)

	if deps.CheckDataset == nil {
		deps.CheckDataset = db.Ping
	}
	liveness, readiness := api.NewHealthHandlers(deps, quiet)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, &config.Config{Host: "127.0.0.1", Port: "0", Environment: "test"}, quiet, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Story:     story.NewHandler(stories),
		Stats:     stats.NewHandler(aggregates),
		Web:       pages,
	})
	return server.Handler()
}

func do(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouting(t *testing.T) {
	server := newServer(t, api.HealthDependencies{})

	rec := do(t, server, "/api/search?language=English")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(constants.HeaderXRequestID))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["pagination"].(map[string]any)["total_count"])

	rec = do(t, server, "/api/stats/basic")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", decode(t, rec)["error"])

	rec = do(t, server, "/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = do(t, server, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Top fandoms")
}

func TestHealth(t *testing.T) {
	server := newServer(t, api.HealthDependencies{})

	rec := do(t, server, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "ready", data["status"])
	assert.Len(t, data["checks"], 1)
}

func TestReady_Degraded(t *testing.T) {
	server := newServer(t, api.HealthDependencies{
		CheckCache: func(context.Context) error { return errors.New("redis: ping failed") },
	})

	rec := do(t, server, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	assert.Len(t, data["checks"], 2)
}
