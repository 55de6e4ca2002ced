// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/respond"
	"github.com/taibuivan/ficdex/internal/platform/validate"
)

// # Handler Implementation

// Handler exposes the aggregates as JSON.
type Handler struct {
	service *Service
}

// NewHandler constructs a stats [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the aggregate endpoints on an /api router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/stats/basic", handler.basic)
	router.Get("/stats/fandoms", handler.fandoms)
	router.Get("/stats/authors", handler.authors)
	router.Get("/stats/languages", handler.distribution(FieldLanguage))
	router.Get("/stats/ratings", handler.distribution(FieldRating))
	router.Get("/stats/status", handler.distribution(FieldStatus))
	router.Get("/top/longest", handler.longest)
}

// GET /api/stats/basic.
func (handler *Handler) basic(writer http.ResponseWriter, request *http.Request) {
	basic, err := handler.service.Basic(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, basic)
}

/*
GET /api/stats/fandoms.

Request:
  - limit: int (default 10, clamped to 100)
*/
func (handler *Handler) fandoms(writer http.ResponseWriter, request *http.Request) {
	limit, err := LimitParam(request, constants.DefaultRankLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	fandoms, err := handler.service.TopFandoms(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, fandoms)
}

/*
GET /api/stats/authors.

Request:
  - limit: int (default 10, clamped to 100)
*/
func (handler *Handler) authors(writer http.ResponseWriter, request *http.Request) {
	limit, err := LimitParam(request, constants.DefaultRankLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	authors, err := handler.service.TopAuthors(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, authors)
}

/*
GET /api/top/longest.

Request:
  - limit: int (default 10, clamped to 100)
*/
func (handler *Handler) longest(writer http.ResponseWriter, request *http.Request) {
	limit, err := LimitParam(request, constants.DefaultRankLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stories, err := handler.service.LongestStories(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stories)
}

// GET /api/stats/{languages,ratings,status}.
func (handler *Handler) distribution(field Field) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		buckets, err := handler.service.Distribution(request.Context(), string(field))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, buckets)
	}
}

// LimitParam reads the "limit" query parameter. Blank means def; anything
// that is not a whole number is InvalidArgument.
func LimitParam(request *http.Request, def int) (int, error) {
	var limit *int64
	v := &validate.Validator{}
	if err := v.Integer("limit", request.URL.Query().Get("limit"), &limit).Err(); err != nil {
		return 0, err
	}
	if limit == nil {
		return def, nil
	}
	return int(*limit), nil
}
