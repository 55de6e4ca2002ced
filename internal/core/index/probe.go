// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
)

// Probe is a representative query timed before and after indexing.
type Probe struct {
	Name  string
	Query sq.Sqlizer
}

// Timing is the wall-clock cost of one probe, rows drained.
type Timing struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`
}

// DefaultProbes covers the query shapes the catalog is meant to speed up.
func DefaultProbes(d database.Dialect) []Probe {
	s := schema.Story
	count := d.Builder().Select("COUNT(*)").From(s.Table)

	return []Probe{
		{Name: "Author search", Query: count.Where(sq.Expr(d.EqualFold(s.Author), "J. K. Rowling"))},
		{Name: "Category search", Query: count.Where(sq.Expr(d.ContainsFold(s.Category), "%Harry Potter%"))},
		{Name: "Word count range", Query: count.Where(sq.And{sq.GtOrEq{s.WordCount: 50000}, sq.LtOrEq{s.WordCount: 100000}})},
		{Name: "Multi-filter", Query: count.Where(sq.And{
			sq.Eq{s.Language: "English"},
			sq.Eq{s.Status: "Completed"},
			sq.Gt{s.WordCount: 10000},
		})},
		{Name: "Top authors", Query: d.Builder().
			Select(s.Author, "COUNT(*) AS n").
			From(s.Table).
			Where(sq.NotEq{s.Author: ""}).
			GroupBy(s.Author).
			OrderBy("n DESC").
			Limit(10)},
	}
}

/*
Measure runs each probe once on a single connection and times it.

Returns:
  - []Timing: One entry per probe, in the order given.
  - error: The first probe that fails stops the run.
*/
func (m *Manager) Measure(ctx context.Context, probes []Probe) ([]Timing, error) {
	timings := make([]Timing, 0, len(probes))

	err := m.db.Session(ctx, func(conn *sql.Conn) error {
		for _, p := range probes {
			text, args, err := p.Query.ToSql()
			if err != nil {
				return fmt.Errorf("probe %q: %w", p.Name, err)
			}

			start := time.Now()
			if err := drain(ctx, conn, text, args); err != nil {
				return fmt.Errorf("probe %q: %w", p.Name, err)
			}
			timings = append(timings, Timing{Name: p.Name, Elapsed: time.Since(start)})
		}
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "measure")
	}
	return timings, nil
}

func drain(ctx context.Context, conn *sql.Conn, query string, args []any) error {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
	}
	return rows.Err()
}
