// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dbtest builds throwaway SQLite datasets shaped like the published
// metadata dump, for package tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	// sqlite registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/pkg/pointer"
)

// createTable mirrors the dump: text columns plus two counters of the given
// affinity. The extra "Url" column stands in for the columns list views never
// project.
func createTable(counter string) string {
	return fmt.Sprintf(`CREATE TABLE %[1]s (
	%[2]s TEXT, %[3]s TEXT, %[4]s TEXT, %[5]s TEXT, %[6]s TEXT, %[7]s TEXT, %[8]s TEXT,
	%[9]s %[13]s, %[10]s %[13]s, %[11]s TEXT, %[12]s TEXT, Url TEXT
)`,
		schema.Story.Table,
		schema.Story.Title, schema.Story.Author, schema.Story.Category, schema.Story.Genre,
		schema.Story.Language, schema.Story.Status, schema.Story.Rating,
		schema.Story.WordCount, schema.Story.ChapterCount,
		schema.Story.Updated, schema.Story.Published,
		counter,
	)
}

// Row is one fixture record. Nil counters are stored as NULL.
type Row struct {
	Title        string
	Author       string
	Category     string
	Genre        string
	Language     string
	Status       string
	Rating       string
	WordCount    *int64
	ChapterCount *int64
	Updated      string
	Published    string
	URL          string
}

// Int is a shortcut for optional counters in fixtures.
func Int(n int64) *int64 { return pointer.To(n) }

// NewFile creates a dataset file holding rows and returns its path. Rows are
// inserted in order, so the first row gets rowid 1.
func NewFile(t testing.TB, rows ...Row) string {
	t.Helper()
	return newFile(t, "INTEGER", rows...)
}

// NewRealFile is [NewFile] with REAL counters, the layout dataframe exports
// produce for nullable integer columns. Counters read back as float64.
func NewRealFile(t testing.TB, rows ...Row) string {
	t.Helper()
	return newFile(t, "REAL", rows...)
}

func newFile(t testing.TB, counter string, rows ...Row) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metadata-full.sqlite")
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	defer raw.Close()

	if _, err := raw.Exec(createTable(counter)); err != nil {
		t.Fatalf("dbtest: create table: %v", err)
	}

	Insert(t, raw, rows...)
	return path
}

// Insert appends rows to the story table through any handle.
func Insert(t testing.TB, db *sql.DB, rows ...Row) {
	t.Helper()

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, Url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schema.Story.Table,
		schema.Story.Title, schema.Story.Author, schema.Story.Category, schema.Story.Genre,
		schema.Story.Language, schema.Story.Status, schema.Story.Rating,
		schema.Story.WordCount, schema.Story.ChapterCount,
		schema.Story.Updated, schema.Story.Published,
	)

	for _, r := range rows {
		_, err := db.Exec(insert,
			r.Title, r.Author, r.Category, r.Genre, r.Language, r.Status, r.Rating,
			nullable(r.WordCount), nullable(r.ChapterCount), r.Updated, r.Published, r.URL,
		)
		if err != nil {
			t.Fatalf("dbtest: insert %q: %v", r.Title, err)
		}
	}
}

// Open creates a dataset with rows and opens it writable, the way the
// maintenance CLI does. The handle is closed on test cleanup.
func Open(t testing.TB, rows ...Row) *database.DB {
	t.Helper()
	return OpenPath(t, NewFile(t, rows...))
}

// OpenPath opens an existing dataset file writable.
func OpenPath(t testing.TB, path string, opts ...database.Option) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), "sqlite", path, opts...)
	if err != nil {
		t.Fatalf("dbtest: open dataset: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func nullable(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}
