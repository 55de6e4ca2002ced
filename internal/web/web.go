// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package web renders the HTML explorer pages on top of the Query Engine.

Every page is the shared layout plus one content template, parsed once at
startup from the embedded file system. Handlers only gather data; formatting
lives in the template helpers.
*/
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ficdex/internal/core/stats"
	"github.com/taibuivan/ficdex/internal/core/story"
	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/ctxutil"
	"github.com/taibuivan/ficdex/internal/platform/respond"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page sizes of the ranked pages.
const (
	dashboardFandoms = 10
	topFandoms       = 50
	topAuthors       = 50
	topLongest       = 100
)

var pages = []string{
	"dashboard", "search", "browse", "story", "fandoms", "authors", "longest", "stats", "error",
}

// Handler serves the HTML pages.
type Handler struct {
	stories   *story.Service
	stats     *stats.Service
	templates map[string]*template.Template
}

// NewHandler parses the embedded templates. A template error is a startup
// failure.
func NewHandler(stories *story.Service, statistics *stats.Service) (*Handler, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Handler{stories: stories, stats: statistics, templates: templates}, nil
}

// RegisterRoutes mounts the pages and the static assets.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	static, _ := fs.Sub(staticFS, "static")
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	router.Get("/", handler.dashboard)
	router.Get("/search", handler.search)
	router.Get("/browse", handler.browse)
	router.Get("/story/{id}", handler.storyDetail)
	router.Get("/top/fandoms", handler.topFandoms)
	router.Get("/top/authors", handler.topAuthors)
	router.Get("/top/longest", handler.topLongest)
	router.Get("/stats", handler.statistics)
}

// # Page Data

type dashboardPage struct {
	Basic   *stats.Basic
	Fandoms []stats.Fandom
}

type listingPage struct {
	Query      url.Values
	Searched   bool
	Results    []story.Story
	Pagination pagination.View
}

type statsPage struct {
	Languages []stats.Bucket
	Ratings   []stats.Bucket
	Statuses  []stats.Bucket
}

type errorPage struct {
	Status  int
	Title   string
	Message string
}

// # Handlers

// GET /.
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	basic, err := handler.stats.Basic(ctx)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	fandoms, err := handler.stats.TopFandoms(ctx, dashboardFandoms)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.render(writer, request, "dashboard", http.StatusOK, dashboardPage{Basic: basic, Fandoms: fandoms})
}

/*
GET /search.

Description: Renders the empty form until at least one filter or show_all is
present. Filters and paging follow the JSON search endpoint.
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	criteria, err := story.ParseCriteria(query)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	data := listingPage{Query: query}
	if criteria.IsEmpty() && query.Get("show_all") == "" {
		handler.render(writer, request, "search", http.StatusOK, data)
		return
	}

	page, err := pagination.FromQuery(query, constants.DefaultPageSize, 0)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	results, meta, err := handler.stories.Search(request.Context(), criteria, page)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	data.Searched = true
	data.Results = results
	data.Pagination = pagination.NewView(meta)
	handler.render(writer, request, "search", http.StatusOK, data)
}

// GET /browse: every record, newest first, a fixed page size.
func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	query := url.Values{"page": request.URL.Query()["page"]}

	page, err := pagination.FromQuery(query, constants.BrowsePageSize, 0)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	results, meta, err := handler.stories.Search(request.Context(), story.Criteria{}, page)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.render(writer, request, "browse", http.StatusOK, listingPage{
		Query:      query,
		Searched:   true,
		Results:    results,
		Pagination: pagination.NewView(meta),
	})
}

// GET /story/{id}.
func (handler *Handler) storyDetail(writer http.ResponseWriter, request *http.Request) {
	id, err := story.ParseID(chi.URLParam(request, "id"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	detail, err := handler.stories.GetByID(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.render(writer, request, "story", http.StatusOK, detail)
}

// GET /top/fandoms.
func (handler *Handler) topFandoms(writer http.ResponseWriter, request *http.Request) {
	fandoms, err := handler.stats.TopFandoms(request.Context(), topFandoms)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	handler.render(writer, request, "fandoms", http.StatusOK, fandoms)
}

// GET /top/authors.
func (handler *Handler) topAuthors(writer http.ResponseWriter, request *http.Request) {
	authors, err := handler.stats.TopAuthors(request.Context(), topAuthors)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	handler.render(writer, request, "authors", http.StatusOK, authors)
}

// GET /top/longest.
func (handler *Handler) topLongest(writer http.ResponseWriter, request *http.Request) {
	longest, err := handler.stats.LongestStories(request.Context(), topLongest)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	handler.render(writer, request, "longest", http.StatusOK, longest)
}

// GET /stats.
func (handler *Handler) statistics(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	var (
		data statsPage
		err  error
	)

	if data.Languages, err = handler.stats.Distribution(ctx, string(stats.FieldLanguage)); err != nil {
		handler.fail(writer, request, err)
		return
	}
	if data.Ratings, err = handler.stats.Distribution(ctx, string(stats.FieldRating)); err != nil {
		handler.fail(writer, request, err)
		return
	}
	if data.Statuses, err = handler.stats.Distribution(ctx, string(stats.FieldStatus)); err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.render(writer, request, "stats", http.StatusOK, data)
}

// NotFound renders the 404 page for unknown page paths.
func (handler *Handler) NotFound(writer http.ResponseWriter, request *http.Request) {
	handler.fail(writer, request, apperr.NotFound("Page"))
}

// # Rendering

// fail renders the error page matching err. Causes are logged, never shown.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	appErr := respond.Classify(request, err)

	data := errorPage{Status: appErr.HTTPStatus, Title: http.StatusText(appErr.HTTPStatus), Message: appErr.Message}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		data.Message = "Something went wrong on our side. Please try again later."
	}
	handler.render(writer, request, "error", appErr.HTTPStatus, data)
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (handler *Handler) render(writer http.ResponseWriter, request *http.Request, name string, status int, data any) {
	var buf bytes.Buffer
	if err := handler.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "template_render_failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buf.WriteTo(writer)
}
