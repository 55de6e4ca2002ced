// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

// SQLRepository implements [Repository] on SQLite or a Postgres mirror.
//
// Every call checks out one pooled connection through [database.DB.Session]
// and releases it on return; no connection state is shared between requests.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository constructs a repository over an open dataset.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

/*
Search returns a filtered page of records and the total count.

Description: The predicate is built once and used twice: by the page query
(ORDER BY Updated DESC, LIMIT, OFFSET) and by a COUNT(*) without the window.
Both run on the same session connection but not in one snapshot; a dataset
replaced between the two statements can make the count disagree with the page.

Parameters:
  - ctx: context.Context
  - criteria: Criteria (optional filters, empty = all records)
  - page: pagination.Params (already validated and clamped)

Returns:
  - []Story: At most page.PerPage records, never nil
  - int64: Matches ignoring the window
  - error: StorageUnavailable or Internal
*/
func (r *SQLRepository) Search(ctx context.Context, criteria Criteria, page pagination.Params) ([]Story, int64, error) {
	d := r.db.Dialect()
	where := criteria.Predicate(d)

	columns := append([]string{d.RowID()}, schema.Story.SearchColumns()...)
	pageQuery := d.Builder().
		Select(columns...).
		From(schema.Story.Table).
		OrderBy(schema.Story.Updated+" DESC", d.RowID()+" DESC").
		Limit(uint64(page.PerPage)).
		Offset(page.Offset())

	countQuery := d.Builder().Select("COUNT(*)").From(schema.Story.Table)

	if len(where) > 0 {
		pageQuery = pageQuery.Where(where)
		countQuery = countQuery.Where(where)
	}

	stories := make([]Story, 0, page.PerPage)
	var total int64

	err := r.db.Session(ctx, func(conn *sql.Conn) error {

		// 1. Page window
		if err := queryStories(ctx, conn, pageQuery, func(rows *sql.Rows) error {
			s, err := scanSearchRow(rows)
			if err != nil {
				return err
			}
			stories = append(stories, s)
			return nil
		}); err != nil {
			return err
		}

		// 2. Total over the same predicate
		countSQL, countArgs, err := countQuery.ToSql()
		if err != nil {
			return fmt.Errorf("build count query: %w", err)
		}
		return conn.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total)
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_stories")
	}

	return stories, total, nil
}

/*
FindByID retrieves every column of one record by its row identifier.

Description: The query selects the row identifier and "*", so columns added
to the dump later still reach the caller through [Detail.Extra]. Known
columns are matched case-insensitively because a Postgres mirror folds
unquoted names to lower case.

Returns:
  - *Detail: The full record
  - error: NotFound when no row has that identifier
*/
func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*Detail, error) {
	d := r.db.Dialect()

	query, args, err := d.Builder().
		Select(d.RowID(), "*").
		From(schema.Story.Table).
		Where(sq.Eq{d.RowID(): id}).
		ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_find_story")
	}

	var detail *Detail
	err = r.db.Session(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return sql.ErrNoRows
		}

		names, err := rows.Columns()
		if err != nil {
			return err
		}

		values := make([]any, len(names))
		targets := make([]any, len(names))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return err
		}

		detail = buildDetail(id, names[1:], values[1:])
		return rows.Err()
	})
	if err != nil {
		return nil, dberr.WrapLookup(err, "find_story", "Story")
	}

	return detail, nil
}

// # Row Mapping

func queryStories(ctx context.Context, conn *sql.Conn, query sq.SelectBuilder, each func(*sql.Rows) error) error {
	text, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := conn.QueryContext(ctx, text, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanSearchRow reads rowid followed by [schema.StoryTable.SearchColumns].
func scanSearchRow(rows *sql.Rows) (Story, error) {
	var (
		s                                                        Story
		title, author, category, genre, language, status, rating sql.NullString
		updated                                                  sql.NullString
		words, chapters                                          database.NullCount
	)

	err := rows.Scan(&s.ID, &title, &author, &category, &genre, &language, &status,
		&words, &chapters, &rating, &updated)
	if err != nil {
		return Story{}, err
	}

	s.Title, s.Author, s.Category, s.Genre = title.String, author.String, category.String, genre.String
	s.Language, s.Status, s.Rating, s.Updated = language.String, status.String, rating.String, updated.String
	s.WordCount = words.Ptr()
	s.ChapterCount = chapters.Ptr()
	return s, nil
}

func buildDetail(id int64, names []string, values []any) *Detail {
	detail := &Detail{Story: Story{ID: id}}

	text := map[string]*string{
		schema.Story.Title:     &detail.Title,
		schema.Story.Author:    &detail.Author,
		schema.Story.Category:  &detail.Category,
		schema.Story.Genre:     &detail.Genre,
		schema.Story.Language:  &detail.Language,
		schema.Story.Status:    &detail.Status,
		schema.Story.Rating:    &detail.Rating,
		schema.Story.Updated:   &detail.Updated,
		schema.Story.Published: &detail.Published,
	}
	counters := map[string]**int64{
		schema.Story.WordCount:    &detail.WordCount,
		schema.Story.ChapterCount: &detail.ChapterCount,
	}

	for i, name := range names {
		if target := lookupFold(text, name); target != nil {
			*target = asString(values[i])
			continue
		}
		if target := lookupFold(counters, name); target != nil {
			*target = database.CountOf(values[i])
			continue
		}
		if strings.EqualFold(name, "id") || strings.EqualFold(name, "rowid") {
			continue
		}

		if detail.Extra == nil {
			detail.Extra = make(map[string]any)
		}
		detail.Extra[name] = normalize(values[i])
	}

	return detail
}

func lookupFold[T any](m map[string]T, name string) T {
	for key, value := range m {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	var zero T
	return zero
}

// asString renders a driver value as text; NULL becomes "".
func asString(v any) string {
	switch t := normalize(v).(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// normalize turns driver byte slices and times into JSON-friendly values.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
