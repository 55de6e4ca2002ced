// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
)

// SQLRepository implements [Repository] with grouped SQL aggregates.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository constructs a repository over an open dataset.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// nonEmpty excludes NULL and empty-string values of column.
func nonEmpty(column string) sq.And {
	return sq.And{sq.NotEq{column: nil}, sq.NotEq{column: ""}}
}

// positiveWords is the average's denominator filter: NULL and zero counts are
// left out by the CASE, which yields NULL for them.
var positiveWords = fmt.Sprintf("AVG(CASE WHEN %[1]s > 0 THEN %[1]s END)", schema.Story.WordCount)

/*
Basic computes the dashboard totals in one statement.

Description: total_words sums every non-NULL word_count and stays NULL when
there is none; avg_words averages only word_count > 0 and falls back to 0.
The two filters differ on purpose.
*/
func (r *SQLRepository) Basic(ctx context.Context) (*Basic, error) {
	d := r.db.Dialect()
	query := d.Builder().
		Select(
			"COUNT(*)",
			fmt.Sprintf("COUNT(DISTINCT CASE WHEN %[1]s <> '' THEN %[1]s END)", schema.Story.Author),
			fmt.Sprintf("SUM(%s)", schema.Story.WordCount),
			positiveWords,
		).
		From(schema.Story.Table)

	var (
		basic Basic
		total database.NullCount
		avg   sql.NullFloat64
	)
	err := r.session(ctx, query, func(rows *sql.Rows) error {
		return rows.Scan(&basic.TotalStories, &basic.UniqueAuthors, &total, &avg)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "basic_stats")
	}

	basic.TotalWords = total.Ptr()
	if avg.Valid {
		basic.AvgWords = int64(avg.Float64)
	}
	return &basic, nil
}

// TopFandoms ranks categories by story count.
func (r *SQLRepository) TopFandoms(ctx context.Context, limit int) ([]Fandom, error) {
	column := schema.Story.Category
	query := r.db.Dialect().Builder().
		Select(column, "COUNT(*) AS story_count").
		From(schema.Story.Table).
		Where(nonEmpty(column)).
		GroupBy(column).
		OrderBy("story_count DESC", column).
		Limit(uint64(limit))

	fandoms := make([]Fandom, 0, limit)
	err := r.session(ctx, query, func(rows *sql.Rows) error {
		var f Fandom
		if err := rows.Scan(&f.Name, &f.StoryCount); err != nil {
			return err
		}
		fandoms = append(fandoms, f)
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "top_fandoms")
	}
	return fandoms, nil
}

/*
TopAuthors ranks authors by story count.

Description: avg_words is the mean over the author's records with
word_count > 0 (0 when there is none); total_words sums every non-NULL
word_count of the group.
*/
func (r *SQLRepository) TopAuthors(ctx context.Context, limit int) ([]Author, error) {
	column := schema.Story.Author
	query := r.db.Dialect().Builder().
		Select(
			column,
			"COUNT(*) AS story_count",
			positiveWords,
			fmt.Sprintf("COALESCE(SUM(%s), 0)", schema.Story.WordCount),
		).
		From(schema.Story.Table).
		Where(nonEmpty(column)).
		GroupBy(column).
		OrderBy("story_count DESC", column).
		Limit(uint64(limit))

	authors := make([]Author, 0, limit)
	err := r.session(ctx, query, func(rows *sql.Rows) error {
		var (
			a     Author
			avg   sql.NullFloat64
			total database.NullCount
		)
		if err := rows.Scan(&a.Name, &a.StoryCount, &avg, &total); err != nil {
			return err
		}
		a.TotalWords = total.V
		if avg.Valid {
			a.AvgWords = int64(avg.Float64)
		}
		authors = append(authors, a)
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "top_authors")
	}
	return authors, nil
}

// LongestStories ranks records with a positive word count.
func (r *SQLRepository) LongestStories(ctx context.Context, limit int) ([]LongStory, error) {
	d := r.db.Dialect()
	s := schema.Story
	query := d.Builder().
		Select(d.RowID(), s.Title, s.Author, s.WordCount, s.ChapterCount, s.Category, s.Status).
		From(s.Table).
		Where(sq.Gt{s.WordCount: 0}).
		OrderBy(s.WordCount+" DESC", d.RowID()).
		Limit(uint64(limit))

	stories := make([]LongStory, 0, limit)
	err := r.session(ctx, query, func(rows *sql.Rows) error {
		var (
			ls                              LongStory
			title, author, category, status sql.NullString
			words, chapters                 database.NullCount
		)
		if err := rows.Scan(&ls.ID, &title, &author, &words, &chapters, &category, &status); err != nil {
			return err
		}
		ls.WordCount = words.V
		ls.Title, ls.Author, ls.Category, ls.Status = title.String, author.String, category.String, status.String
		ls.ChapterCount = chapters.Ptr()
		stories = append(stories, ls)
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "longest_stories")
	}
	return stories, nil
}

// Distribution counts records per non-empty value of column.
func (r *SQLRepository) Distribution(ctx context.Context, column string, limit int) ([]Bucket, error) {
	query := r.db.Dialect().Builder().
		Select(column, "COUNT(*) AS n").
		From(schema.Story.Table).
		Where(nonEmpty(column)).
		GroupBy(column).
		OrderBy("n DESC", column)
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	buckets := make([]Bucket, 0)
	err := r.session(ctx, query, func(rows *sql.Rows) error {
		var b Bucket
		if err := rows.Scan(&b.Name, &b.Count); err != nil {
			return err
		}
		buckets = append(buckets, b)
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "distribution_"+column)
	}
	return buckets, nil
}

// session runs query on a scoped connection and calls each for every row.
func (r *SQLRepository) session(ctx context.Context, query sq.SelectBuilder, each func(*sql.Rows) error) error {
	text, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return r.db.Session(ctx, func(conn *sql.Conn) error {
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
	})
}
