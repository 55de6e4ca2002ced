// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/core/story"
	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/dbtest"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixture is a small dataset with distinct Updated values.
func fixture() []dbtest.Row {
	return []dbtest.Row{
		{Title: "The Ring Returns", Author: "Jane", Category: "Lord of the Rings", Genre: "Adventure", Language: "English", Status: "Completed", Rating: "T", WordCount: dbtest.Int(1000), ChapterCount: dbtest.Int(3), Updated: "2024-01-05", Published: "2023-01-01", URL: "https://fics.example/1"},
		{Title: "Snape's Potion", Author: "jane", Category: "Harry Potter", Genre: "Drama", Language: "English", Status: "In-Progress", Rating: "M", WordCount: dbtest.Int(5000), Updated: "2024-01-03"},
		{Title: "100% Wizard", Author: "Ron", Category: "Harry Potter", Genre: "Humor", Language: "Spanish", Status: "Completed", Rating: "K", WordCount: nil, Updated: "2024-01-04"},
		{Title: "Hobbit Tales", Author: "", Category: "Lord of the Rings", Genre: "Adventure", Language: "English", Status: "completed", Rating: "T", WordCount: dbtest.Int(0), Updated: "2024-01-01"},
		{Title: "Quidditch", Author: "Harry", Category: "Harry Potter", Genre: "Sports", Language: "English", Status: "Completed", Rating: "T", WordCount: dbtest.Int(250), Updated: "2024-01-02"},
	}
}

func newService(t *testing.T, rows ...dbtest.Row) *story.Service {
	t.Helper()
	db := dbtest.OpenPath(t, dbtest.NewFile(t, rows...), database.ReadOnly())
	return story.NewService(story.NewSQLRepository(db), 100, quiet)
}

func titles(stories []story.Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.Title)
	}
	return out
}

/*
TestSearch_NoCriteria returns everything ordered by Updated descending with a
total equal to the row count.
*/
func TestSearch_NoCriteria(t *testing.T) {
	svc := newService(t, fixture()...)

	stories, meta, err := svc.Search(context.Background(), story.Criteria{}, pagination.Params{Page: 1, PerPage: 50})
	require.NoError(t, err)

	assert.EqualValues(t, 5, meta.TotalCount)
	assert.EqualValues(t, 1, meta.TotalPages)
	assert.Equal(t, []string{"The Ring Returns", "100% Wizard", "Snape's Potion", "Quidditch", "Hobbit Tales"}, titles(stories))

	first := stories[0]
	assert.EqualValues(t, 1, first.ID)
	assert.Equal(t, "Jane", first.Author)
	require.NotNil(t, first.WordCount)
	assert.EqualValues(t, 1000, *first.WordCount)
	assert.Nil(t, stories[1].WordCount)
	assert.Nil(t, stories[2].ChapterCount)
}

func TestSearch_Filters(t *testing.T) {
	svc := newService(t, fixture()...)
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 50}

	tests := []struct {
		name     string
		criteria story.Criteria
		want     []string
	}{
		{"substring_case_insensitive", story.Criteria{Category: "harry"}, []string{"100% Wizard", "Snape's Potion", "Quidditch"}},
		{"author_substring", story.Criteria{Author: "JANE"}, []string{"The Ring Returns", "Snape's Potion"}},
		{"literal_percent", story.Criteria{Title: "100%"}, []string{"100% Wizard"}},
		{"percent_is_not_wildcard", story.Criteria{Title: "%"}, []string{"100% Wizard"}},
		{"underscore_is_not_wildcard", story.Criteria{Title: "_"}, []string{}},
		{"exact_case_sensitive", story.Criteria{Status: "Completed"}, []string{"The Ring Returns", "100% Wizard", "Quidditch"}},
		{"exact_language", story.Criteria{Language: "Spanish"}, []string{"100% Wizard"}},
		{"conjunction", story.Criteria{Category: "Rings", Rating: "T", Genre: "adventure"}, []string{"The Ring Returns", "Hobbit Tales"}},
		{"quote_in_value", story.Criteria{Title: "Snape's"}, []string{"Snape's Potion"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories, meta, err := svc.Search(ctx, tt.criteria, page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(stories))
			assert.EqualValues(t, len(tt.want), meta.TotalCount)
		})
	}
}

/*
TestSearch_WordRange checks inclusive bounds and that an inverted range is an
empty page, not an error.
*/
func TestSearch_WordRange(t *testing.T) {
	svc := newService(t, fixture()...)
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 50}

	min, max := int64(250), int64(1000)
	stories, meta, err := svc.Search(ctx, story.Criteria{MinWords: &min, MaxWords: &max}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Ring Returns", "Quidditch"}, titles(stories))
	assert.EqualValues(t, 2, meta.TotalCount)
	for _, s := range stories {
		assert.GreaterOrEqual(t, *s.WordCount, min)
		assert.LessOrEqual(t, *s.WordCount, max)
	}

	lo, hi := int64(2000), int64(100)
	stories, meta, err = svc.Search(ctx, story.Criteria{MinWords: &lo, MaxWords: &hi}, page)
	require.NoError(t, err)
	assert.Empty(t, stories)
	assert.NotNil(t, stories)
	assert.EqualValues(t, 0, meta.TotalCount)
}

/*
TestSearch_PaginationConsistency concatenates every page and expects exactly
total_count distinct records. Many rows share an Updated value on purpose.
*/
func TestSearch_PaginationConsistency(t *testing.T) {
	rows := make([]dbtest.Row, 0, 47)
	for i := 0; i < 47; i++ {
		rows = append(rows, dbtest.Row{
			Title:     fmt.Sprintf("Story %02d", i),
			Category:  "Naruto",
			WordCount: dbtest.Int(int64(i * 10)),
			Updated:   fmt.Sprintf("2024-02-%02d", 1+i%5),
		})
	}
	svc := newService(t, rows...)
	ctx := context.Background()

	seen := make(map[int64]bool)
	page := pagination.Params{Page: 1, PerPage: 10}

	_, meta, err := svc.Search(ctx, story.Criteria{Category: "naruto"}, page)
	require.NoError(t, err)
	require.EqualValues(t, 5, meta.TotalPages)

	for n := 1; n <= int(meta.TotalPages); n++ {
		stories, _, err := svc.Search(ctx, story.Criteria{Category: "naruto"}, pagination.Params{Page: n, PerPage: 10})
		require.NoError(t, err)
		for _, s := range stories {
			assert.False(t, seen[s.ID], "duplicate id %d on page %d", s.ID, n)
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, int(meta.TotalCount))

	beyond, _, err := svc.Search(ctx, story.Criteria{}, pagination.Params{Page: 99, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

/*
TestSearch_ClampsPageSize verifies per_page 500 behaves like 100.
*/
func TestSearch_ClampsPageSize(t *testing.T) {
	rows := make([]dbtest.Row, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, dbtest.Row{Title: fmt.Sprintf("S%03d", i), Updated: fmt.Sprintf("2024-03-%02d", 1+i%28)})
	}
	svc := newService(t, rows...)
	ctx := context.Background()

	big, bigMeta, err := svc.Search(ctx, story.Criteria{}, pagination.Params{Page: 1, PerPage: 500})
	require.NoError(t, err)
	capped, cappedMeta, err := svc.Search(ctx, story.Criteria{}, pagination.Params{Page: 1, PerPage: 100})
	require.NoError(t, err)

	assert.Len(t, big, 100)
	assert.Equal(t, cappedMeta, bigMeta)
	assert.Equal(t, 100, bigMeta.PerPage)
	assert.Equal(t, titles(capped), titles(big))
}

func TestSearch_InvalidPage(t *testing.T) {
	svc := newService(t, fixture()...)

	for _, page := range []pagination.Params{{Page: 0, PerPage: 10}, {Page: -2, PerPage: 10}, {Page: 1, PerPage: 0}} {
		_, _, err := svc.Search(context.Background(), story.Criteria{}, page)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidArgument), "page %+v", page)
	}
}

func TestSearch_FarPage(t *testing.T) {
	svc := newService(t, fixture()...)

	stories, meta, err := svc.Search(context.Background(), story.Criteria{},
		pagination.Params{Page: 100000000000000000, PerPage: 100})
	require.NoError(t, err)
	assert.Empty(t, stories)
	assert.EqualValues(t, len(fixture()), meta.TotalCount)
	assert.Equal(t, 100000000000000000, meta.Page)
}

/*
TestGetByID returns all columns, including ones outside the search projection.
*/
func TestGetByID(t *testing.T) {
	svc := newService(t, fixture()...)

	detail, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.EqualValues(t, 1, detail.ID)
	assert.Equal(t, "The Ring Returns", detail.Title)
	assert.Equal(t, "2023-01-01", detail.Published)
	require.NotNil(t, detail.ChapterCount)
	assert.EqualValues(t, 3, *detail.ChapterCount)
	assert.Equal(t, map[string]any{"Url": "https://fics.example/1"}, detail.Extra)

	nulls, err := svc.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, nulls.WordCount)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newService(t, fixture()...)

	for _, id := range []int64{0, -1, 999} {
		_, err := svc.GetByID(context.Background(), id)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "id %d", id)
	}
}

/*
TestSearch_MissingTable maps a dataset without the story table to
StorageUnavailable.
*/
func TestSearch_MissingTable(t *testing.T) {
	db := dbtest.Open(t)
	_, err := db.Exec("DROP TABLE metadata_full")
	require.NoError(t, err)

	svc := story.NewService(story.NewSQLRepository(db), 100, quiet)
	_, _, err = svc.Search(context.Background(), story.Criteria{}, pagination.Params{Page: 1, PerPage: 10})
	assert.True(t, apperr.HasCode(err, apperr.CodeStorageUnavailable))
}

/*
TestSearch_RealCounters reads a dump whose counters have REAL affinity. List
rows and the detail view must agree on the integer values.
*/
func TestSearch_RealCounters(t *testing.T) {
	db := dbtest.OpenPath(t, dbtest.NewRealFile(t,
		dbtest.Row{Title: "Epic", WordCount: dbtest.Int(1500000), ChapterCount: dbtest.Int(42), Updated: "2024-02-01"},
		dbtest.Row{Title: "Unknown", Updated: "2024-01-01"},
	), database.ReadOnly())
	svc := story.NewService(story.NewSQLRepository(db), 100, quiet)

	minWords := int64(1000000)
	stories, meta, err := svc.Search(context.Background(), story.Criteria{MinWords: &minWords}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.EqualValues(t, 1, meta.TotalCount)
	require.NotNil(t, stories[0].WordCount)
	assert.EqualValues(t, 1500000, *stories[0].WordCount)
	assert.EqualValues(t, 42, *stories[0].ChapterCount)

	all, _, err := svc.Search(context.Background(), story.Criteria{}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].WordCount)

	detail, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, stories[0].WordCount, detail.WordCount)
}
