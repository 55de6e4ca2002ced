// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story

import (
	"context"
	"log/slog"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

// # Service Layer

// Service applies the paging contract on top of a [Repository].
type Service struct {
	repo        Repository
	maxPageSize int
	logger      *slog.Logger
}

// NewService constructs a [Service]. Page sizes above maxPageSize are clamped.
func NewService(repo Repository, maxPageSize int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

/*
Search runs a filtered search and returns the page with its metadata.

Description: The page request is validated again here so callers other than
the HTTP layer get the same contract: page and size below 1 are
InvalidArgument, size above the maximum is clamped. Criteria with min_words
greater than max_words are not an error; they match nothing.

Returns:
  - []Story: The page
  - pagination.Meta: The effective page, size, total and page count
  - error: InvalidArgument, StorageUnavailable or Internal
*/
func (service *Service) Search(ctx context.Context, criteria Criteria, page pagination.Params) ([]Story, pagination.Meta, error) {
	params, err := pagination.New(page.Page, page.PerPage, service.maxPageSize)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	stories, total, err := service.repo.Search(ctx, criteria, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	service.logger.DebugContext(ctx, "story_search",
		slog.Int("page", params.Page),
		slog.Int("per_page", params.PerPage),
		slog.Int64("total", total),
		slog.Bool("unfiltered", criteria.IsEmpty()),
	)

	return stories, pagination.NewMeta(params, total), nil
}

// GetByID returns the full record with the given row identifier.
func (service *Service) GetByID(ctx context.Context, id int64) (*Detail, error) {
	if id < 1 {
		return nil, apperr.NotFound("Story")
	}
	return service.repo.FindByID(ctx, id)
}
