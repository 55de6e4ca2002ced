// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures the handful of SQL differences between the SQLite dump and
// a Postgres mirror of it. Query shapes are otherwise identical.
type Dialect interface {
	// Name is the driver identifier ("sqlite" or "postgres").
	Name() string

	// Builder returns a squirrel statement builder with the right placeholders.
	Builder() sq.StatementBuilderType

	// RowID is the expression that yields the stable row identifier.
	RowID() string

	// ContainsFold returns a case-insensitive LIKE predicate on column with a
	// single placeholder. Backslash escapes wildcard characters in the pattern.
	ContainsFold(column string) string

	// FoldKey renders an index key that serves case-insensitive lookups.
	FoldKey(column string) string

	// EqualFold returns a case-insensitive equality predicate on column with a
	// single placeholder. Its left side is FoldKey, so a folded index serves it.
	EqualFold(column string) string

	// ListIndexes returns the query listing (name, definition) pairs of the
	// secondary indexes on table, skipping storage-internal ones.
	ListIndexes(table string) (string, []any)

	// SizeBytes returns the query yielding the approximate storage size.
	SizeBytes(table string) (string, []any)
}

// # SQLite

type sqliteDialect struct{}

// SQLite is the dialect of the published dataset file.
var SQLite Dialect = sqliteDialect{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (sqliteDialect) RowID() string { return "rowid" }

// ContainsFold relies on SQLite LIKE, which folds ASCII case.
func (sqliteDialect) ContainsFold(column string) string {
	return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, column)
}

func (sqliteDialect) FoldKey(column string) string {
	return column + " COLLATE NOCASE"
}

func (d sqliteDialect) EqualFold(column string) string {
	return d.FoldKey(column) + " = ?"
}

func (sqliteDialect) ListIndexes(table string) (string, []any) {
	return `SELECT name, COALESCE(sql, '') FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_%'
		ORDER BY name`, []any{table}
}

func (sqliteDialect) SizeBytes(string) (string, []any) {
	return `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`, nil
}

// # PostgreSQL

type postgresDialect struct{}

// Postgres is the dialect of a server-hosted mirror of the dataset.
var Postgres Dialect = postgresDialect{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// RowID on the mirror is an explicit identity column.
func (postgresDialect) RowID() string { return "id" }

func (postgresDialect) ContainsFold(column string) string {
	return fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column)
}

func (postgresDialect) FoldKey(column string) string {
	return fmt.Sprintf("lower(%s)", column)
}

func (d postgresDialect) EqualFold(column string) string {
	return d.FoldKey(column) + " = lower(?)"
}

func (postgresDialect) ListIndexes(table string) (string, []any) {
	return `SELECT i.indexname, i.indexdef FROM pg_indexes i
		WHERE i.schemaname = current_schema() AND i.tablename = $1
		AND NOT EXISTS (
			SELECT 1 FROM pg_constraint c
			WHERE c.conname = i.indexname AND c.contype IN ('p', 'u', 'x')
		)
		ORDER BY i.indexname`, []any{table}
}

func (postgresDialect) SizeBytes(table string) (string, []any) {
	return `SELECT pg_total_relation_size(to_regclass($1))`, []any{table}
}

// DialectFor resolves a driver name to its [Dialect].
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "pgx":
		return Postgres, nil
	}
	return nil, fmt.Errorf("database: unsupported driver %q", driver)
}
