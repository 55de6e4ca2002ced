// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/core/stats"
	"github.com/taibuivan/ficdex/internal/platform/cache"
	"github.com/taibuivan/ficdex/internal/platform/database/dbtest"
)

// countingRepo records how often the dataset is actually queried.
type countingRepo struct {
	stats.Repository
	calls int
}

func (r *countingRepo) TopFandoms(ctx context.Context, limit int) ([]stats.Fandom, error) {
	r.calls++
	return []stats.Fandom{{Name: "Naruto", StoryCount: int64(limit)}}, nil
}

func (r *countingRepo) Basic(context.Context) (*stats.Basic, error) {
	r.calls++
	return nil, errors.New("disk gone")
}

// memoryCache is an in-process [cache.Cache] that stores JSON like redis does.
type memoryCache struct {
	entries map[string][]byte
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, target any) error {
	if m.failGet {
		return errors.New("connection refused")
	}
	raw, ok := m.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, target)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func TestService_Memoises(t *testing.T) {
	repo := &countingRepo{}
	mem := &memoryCache{entries: map[string][]byte{}}
	svc := stats.NewService(repo, mem, time.Minute, quiet)
	ctx := context.Background()

	first, err := svc.TopFandoms(ctx, 5)
	require.NoError(t, err)
	second, err := svc.TopFandoms(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
	assert.Contains(t, mem.entries, "fandoms:5")

	_, err = svc.TopFandoms(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "a different limit is a different key")
}

/*
TestService_CacheFailureFallsThrough keeps serving from the dataset when the
cache is down.
*/
func TestService_CacheFailureFallsThrough(t *testing.T) {
	repo := &countingRepo{}
	svc := stats.NewService(repo, &memoryCache{entries: map[string][]byte{}, failGet: true}, time.Minute, quiet)

	fandoms, err := svc.TopFandoms(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, fandoms, 1)
	assert.Equal(t, 1, repo.calls)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	repo := &countingRepo{}
	mem := &memoryCache{entries: map[string][]byte{}}
	svc := stats.NewService(repo, mem, time.Minute, quiet)

	_, err := svc.Basic(context.Background())
	assert.Error(t, err)
	assert.Empty(t, mem.entries)
}

func TestHTTP(t *testing.T) {
	svc := newService(t,
		dbtest.Row{Author: "Jane", Category: "HP", Language: "English", WordCount: dbtest.Int(1000)},
		dbtest.Row{Author: "Jane", Category: "HP", Language: "English"},
		dbtest.Row{Author: "", Category: "LotR", Language: "French", WordCount: dbtest.Int(500)},
	)
	router := chi.NewRouter()
	stats.NewHandler(svc).RegisterRoutes(router)

	get := func(target string) (int, map[string]any) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body
	}

	code, body := get("/stats/basic")
	assert.Equal(t, http.StatusOK, code)
	basic := body["data"].(map[string]any)
	assert.EqualValues(t, 3, basic["total_stories"])
	assert.EqualValues(t, 1500, basic["total_words"])
	assert.EqualValues(t, 750, basic["avg_words"])

	code, body = get("/stats/authors?limit=5")
	assert.Equal(t, http.StatusOK, code)
	authors := body["data"].([]any)
	require.Len(t, authors, 1)
	assert.Equal(t, "Jane", authors[0].(map[string]any)["name"])

	code, body = get("/stats/languages")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, _ = get("/top/longest?limit=1")
	assert.Equal(t, http.StatusOK, code)

	code, body = get("/stats/fandoms?limit=abc")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = get("/top/longest?limit=0")
	assert.Equal(t, http.StatusBadRequest, code)
}
