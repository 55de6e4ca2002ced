// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package story is the record half of the Query Engine: filtered, paginated
search over the story dataset and single-record lookup.

Core Responsibility:

  - Criteria: a sparse, typed set of optional filters parsed from a query string.
  - Search: one conjunction of parameterized predicates, a page window and a
    separate count over the same predicate.
  - Detail: every column of one row, including columns the explorer does not
    know about.

The dataset is read-only; nothing in this package writes.
*/
package story

// # Core Entities

// Story is one row of the search projection.
type Story struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Category     string `json:"category"`
	Genre        string `json:"genre"`
	Language     string `json:"language"`
	Status       string `json:"status"`
	WordCount    *int64 `json:"word_count"`
	ChapterCount *int64 `json:"chapter_count"`
	Rating       string `json:"rating"`
	Updated      string `json:"updated"`
}

// Detail is a full record. Columns outside the known set are kept in Extra
// under their dataset names.
type Detail struct {
	Story
	Published string         `json:"published"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// # Filters

// Criteria is the sparse set of search filters. Empty strings and nil bounds
// impose no constraint.
type Criteria struct {
	// Substring, case-insensitive.
	Title    string
	Author   string
	Category string
	Genre    string

	// Exact match.
	Language string
	Status   string
	Rating   string

	// Inclusive word_count bounds.
	MinWords *int64
	MaxWords *int64
}

// IsEmpty reports whether no filter is set.
func (c Criteria) IsEmpty() bool {
	return c.Title == "" && c.Author == "" && c.Category == "" && c.Genre == "" &&
		c.Language == "" && c.Status == "" && c.Rating == "" &&
		c.MinWords == nil && c.MaxWords == nil
}
