// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/taibuivan/ficdex/internal/platform/cache"
	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/validate"
)

// # Service Layer

// Service validates limits and memoises aggregates.
type Service struct {
	repo   Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewService constructs a [Service]. A nil cache disables memoisation.
func NewService(repo Repository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// Basic returns the dashboard totals.
func (service *Service) Basic(ctx context.Context) (*Basic, error) {
	return cached(ctx, service, "basic", func() (*Basic, error) {
		return service.repo.Basic(ctx)
	})
}

// TopFandoms returns the largest categories. limit must be positive and is
// clamped to [constants.MaxRankLimit].
func (service *Service) TopFandoms(ctx context.Context, limit int) ([]Fandom, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return nil, err
	}
	return cached(ctx, service, "fandoms:"+strconv.Itoa(limit), func() ([]Fandom, error) {
		return service.repo.TopFandoms(ctx, limit)
	})
}

// TopAuthors returns the most prolific authors, with word statistics.
func (service *Service) TopAuthors(ctx context.Context, limit int) ([]Author, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return nil, err
	}
	return cached(ctx, service, "authors:"+strconv.Itoa(limit), func() ([]Author, error) {
		return service.repo.TopAuthors(ctx, limit)
	})
}

// LongestStories returns the records with the highest word count.
func (service *Service) LongestStories(ctx context.Context, limit int) ([]LongStory, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return nil, err
	}
	return cached(ctx, service, "longest:"+strconv.Itoa(limit), func() ([]LongStory, error) {
		return service.repo.LongestStories(ctx, limit)
	})
}

/*
Distribution counts records per value of field.

Description: Only language, rating and status can be grouped; anything else
is InvalidArgument. The language distribution keeps the ten largest groups,
the others return every group.
*/
func (service *Service) Distribution(ctx context.Context, field string) ([]Bucket, error) {
	var (
		column string
		limit  int
	)

	switch Field(field) {
	case FieldLanguage:
		column, limit = schema.Story.Language, constants.LanguageDistributionLimit
	case FieldRating:
		column = schema.Story.Rating
	case FieldStatus:
		column = schema.Story.Status
	default:
		v := &validate.Validator{}
		return nil, v.OneOf("field", field, Fields()...).Err()
	}

	return cached(ctx, service, "distribution:"+field, func() ([]Bucket, error) {
		return service.repo.Distribution(ctx, column, limit)
	})
}

// clampLimit rejects non-positive limits and caps large ones.
func clampLimit(limit int) (int, error) {
	v := &validate.Validator{}
	if err := v.Positive("limit", limit).Err(); err != nil {
		return 0, err
	}
	return min(limit, constants.MaxRankLimit), nil
}

// cached reads key from the cache or computes and stores it. Cache failures
// are logged and never fail the request.
func cached[T any](ctx context.Context, service *Service, key string, compute func() (T, error)) (T, error) {
	var value T

	err := service.cache.Get(ctx, key, &value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		service.logger.WarnContext(ctx, "stats_cache_read_failed", slog.String("key", key), slog.Any("error", err))
	}

	value, err = compute()
	if err != nil {
		return value, err
	}

	if err := service.cache.Set(ctx, key, value, service.ttl); err != nil {
		service.logger.WarnContext(ctx, "stats_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
	return value, nil
}
