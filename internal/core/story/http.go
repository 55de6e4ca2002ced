// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/respond"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

// # Handler Implementation

// Handler exposes search and detail lookup as JSON.
type Handler struct {
	service *Service
}

// NewHandler constructs a story [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the story endpoints on an /api router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/search", handler.search)
	router.Get("/story/{id}", handler.getStory)
}

/*
GET /api/search.

Request:
  - title, author, category, genre: string (substring, case-insensitive)
  - language, status, rating: string (exact)
  - min_words, max_words: int (inclusive)
  - page: int (default 1)
  - per_page: int (default 50, clamped to 100)

Response:
  - 200: []Story with pagination
  - 400: malformed number or page below 1
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	criteria, err := ParseCriteria(query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The service clamps per_page to its configured maximum.
	page, err := pagination.FromQuery(query, constants.DefaultPageSize, 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stories, meta, err := handler.service.Search(request.Context(), criteria, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, stories, meta)
}

/*
GET /api/story/{id}.

Response:
  - 200: Detail
  - 404: no such record, or an identifier that is not a number
*/
func (handler *Handler) getStory(writer http.ResponseWriter, request *http.Request) {
	id, err := ParseID(chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

// ParseID reads a record identifier from a path segment. Anything that is not
// a positive integer cannot name a record, so it is NotFound.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("Story")
	}
	return id, nil
}
