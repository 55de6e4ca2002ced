// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// StoryTable represents the 'metadata_full' dataset table.
//
// Column names follow the published dump: the text columns are capitalised,
// the counters are snake_case. SQLite matches identifiers case-insensitively
// and a Postgres mirror created without quoted identifiers folds them to
// lower case, so the same names work on both drivers.
type StoryTable struct {
	Table        string
	Title        string
	Author       string
	Category     string
	Genre        string
	Language     string
	Status       string
	Rating       string
	WordCount    string
	ChapterCount string
	Updated      string
	Published    string
}

// Story is the schema definition for metadata_full.
var Story = StoryTable{
	Table:        "metadata_full",
	Title:        "Title",
	Author:       "Author",
	Category:     "Category",
	Genre:        "Genre",
	Language:     "Language",
	Status:       "Status",
	Rating:       "Rating",
	WordCount:    "word_count",
	ChapterCount: "chapter_count",
	Updated:      "Updated",
	Published:    "Published",
}

// Columns returns every known column in dump order.
func (t StoryTable) Columns() []string {
	return []string{
		t.Title, t.Author, t.Category, t.Genre, t.Language, t.Status,
		t.Rating, t.WordCount, t.ChapterCount, t.Updated, t.Published,
	}
}

// SearchColumns returns the projection used by list views.
func (t StoryTable) SearchColumns() []string {
	return []string{
		t.Title, t.Author, t.Category, t.Genre, t.Language, t.Status,
		t.WordCount, t.ChapterCount, t.Rating, t.Updated,
	}
}
