// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package stats is the aggregate half of the Query Engine: dataset totals,
ranked lists and value distributions.

Aggregates over a large dump are the slowest reads the explorer makes and the
dataset never changes while the process runs, so the [Service] memoises them
in a [cache.Cache] namespaced by the dataset fingerprint.

Null policy:

  - Empty or NULL grouping values (author, category, language...) are never
    reported as a group.
  - Averages only count word_count > 0.
  - Sums count every non-NULL word_count, including zeros.
*/
package stats

// Basic holds the dashboard totals.
type Basic struct {
	TotalStories  int64 `json:"total_stories"`
	UniqueAuthors int64 `json:"unique_authors"`
	// TotalWords is nil when no record carries a word count.
	TotalWords *int64 `json:"total_words"`
	// AvgWords is the truncated mean over word_count > 0, or 0.
	AvgWords int64 `json:"avg_words"`
}

// Fandom is one entry of the top-fandoms ranking.
type Fandom struct {
	Name       string `json:"name"`
	StoryCount int64  `json:"story_count"`
}

// Author is one entry of the top-authors ranking.
type Author struct {
	Name       string `json:"name"`
	StoryCount int64  `json:"story_count"`
	AvgWords   int64  `json:"avg_words"`
	TotalWords int64  `json:"total_words"`
}

// LongStory is one entry of the longest-stories ranking.
type LongStory struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	WordCount    int64  `json:"word_count"`
	ChapterCount *int64 `json:"chapter_count"`
	Category     string `json:"category"`
	Status       string `json:"status"`
}

// Bucket is one value of a distribution.
type Bucket struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// # Distribution Fields

// Field names a column a distribution can be grouped by.
type Field string

const (
	FieldLanguage Field = "language"
	FieldRating   Field = "rating"
	FieldStatus   Field = "status"
)

// Fields lists the supported distribution fields.
func Fields() []string {
	return []string{string(FieldLanguage), string(FieldRating), string(FieldStatus)}
}
