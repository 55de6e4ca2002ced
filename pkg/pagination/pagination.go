// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged listings.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// ("page", "per_page"), how the resulting metadata is delivered in the JSON
// envelope, and the previous/next links the HTML pages render.
package pagination

import (
	"math"
	"net/url"
	"strconv"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
)

// DefaultPage is the starting page (1-indexed).
const DefaultPage = 1

// Params holds a validated page request.
type Params struct {
	Page    int
	PerPage int
}

// New validates a page request and clamps the page size to max.
//
// A page number or size below 1 is an InvalidArgument error; a size above max
// is silently reduced to max. A max of 0 disables clamping.
func New(page, perPage, max int) (Params, error) {
	if page < 1 {
		return Params{}, apperr.InvalidArgument("Page number must be at least 1",
			apperr.FieldError{Field: "page", Message: "Must be at least 1"})
	}
	if perPage < 1 {
		return Params{}, apperr.InvalidArgument("Page size must be at least 1",
			apperr.FieldError{Field: "per_page", Message: "Must be at least 1"})
	}
	if max > 0 && perPage > max {
		perPage = max
	}
	return Params{Page: page, PerPage: perPage}, nil
}

// Offset returns the SQL OFFSET value derived from [Page] and [PerPage].
//
// Page numbers arrive from the query string unbounded, so the product
// saturates at [math.MaxInt64] (the largest OFFSET the stores accept). A page
// that far out is simply empty.
func (p Params) Offset() uint64 {
	if p.Page <= 1 || p.PerPage < 1 {
		return 0
	}
	skipped, size := uint64(p.Page-1), uint64(p.PerPage)
	if skipped > math.MaxInt64/size {
		return math.MaxInt64
	}
	return skipped * size
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
//
// It automatically calculates the TotalPages based on the total count and size.
func NewMeta(p Params, total int64) Meta {
	var totalPages int64
	if p.PerPage > 0 {
		totalPages = (total + int64(p.PerPage) - 1) / int64(p.PerPage)
	}

	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// # Page Navigation

// View is the navigation block the HTML pages render under a listing.
type View struct {
	Meta
	HasPrev bool
	HasNext bool
	PrevNum int
	NextNum int
}

// NewView derives previous/next links from metadata.
func NewView(m Meta) View {
	v := View{Meta: m}
	if m.Page > 1 {
		v.HasPrev = true
		v.PrevNum = m.Page - 1
	}
	if int64(m.Page) < m.TotalPages {
		v.HasNext = true
		v.NextNum = m.Page + 1
	}
	return v
}

// # Query Parsing

// FromQuery parses "page" and "per_page" from query values.
//
// # Validation
//
// Blank values fall back to [DefaultPage] and defaultPerPage. Non-numeric
// values and values below 1 are InvalidArgument errors; per_page above max is
// clamped.
func FromQuery(q url.Values, defaultPerPage, max int) (Params, error) {
	page, err := intParam(q, "page", DefaultPage)
	if err != nil {
		return Params{}, err
	}

	perPage, err := intParam(q, "per_page", defaultPerPage)
	if err != nil {
		return Params{}, err
	}

	return New(page, perPage, max)
}

// intParam parses a single integer query parameter with a fallback default.
func intParam(q url.Values, key string, defaultVal int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArgument("Invalid request parameters",
			apperr.FieldError{Field: key, Message: "Must be a whole number"})
	}

	return n, nil
}
