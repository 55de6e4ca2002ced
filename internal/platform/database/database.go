// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package database provides the managed connection pool for the story dataset.
//
// # Architecture
//
// This package is part of the Infrastructure layer. It opens the dataset
// (a SQLite dump through modernc.org/sqlite, or a Postgres mirror through the
// pgx stdlib driver), applies the production pragmas, and hands out scoped
// read sessions to the Query Engine and the Index Manager.
//
// The package never creates the base table; it only connects to it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	// sqlite registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
)

// Opinionated pool settings for a read-heavy browsing workload.
const (
	// maxConns is the maximum number of connections in the pool.
	maxConns = 25
	// maxIdleConns keeps a warm set of connections to avoid cold-start latency.
	maxIdleConns = 5
	// maxConnLifetime ensures connections are periodically recycled.
	maxConnLifetime = 60 * time.Minute
	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
	// defaultBusyTimeout is how long SQLite waits on a locked file (ms).
	defaultBusyTimeout = 10_000
	// defaultStatementTimeout bounds a single statement on the Postgres mirror.
	defaultStatementTimeout = 55 * time.Second
)

// DB is a dataset handle: a pooled *sql.DB plus the dialect it speaks.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Dialect returns the SQL dialect of the underlying store.
func (db *DB) Dialect() Dialect { return db.dialect }

type options struct {
	readOnly    bool
	busyTimeout int
	cacheSize   int
	tempMemory  bool
	logger      *slog.Logger
}

// Option customises Open behaviour.
type Option func(*options)

// ReadOnly opens the dataset without write access. The request-serving path
// always uses it; only the maintenance CLI opens the dataset writable.
func ReadOnly() Option { return func(o *options) { o.readOnly = true } }

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(o *options) { o.busyTimeout = ms } }

// WithCacheSize sets PRAGMA cache_size (pages, or KiB when negative).
func WithCacheSize(pages int) Option { return func(o *options) { o.cacheSize = pages } }

// WithTempStoreMemory sets PRAGMA temp_store = MEMORY, which speeds up index builds.
func WithTempStoreMemory() Option { return func(o *options) { o.tempMemory = true } }

// WithLogger attaches a logger for pool-level events.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// Open connects to the dataset and validates that it is reachable.
//
// # Parameters
//   - ctx: Context for the initial ping.
//   - driver: "sqlite" or "postgres".
//   - dsn: A file path for sqlite, a postgres:// URL for postgres.
//
// A missing or unreadable dataset yields an apperr STORAGE_UNAVAILABLE error.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*DB, error) {
	o := options{busyTimeout: defaultBusyTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	switch dialect {
	case SQLite:
		sqlDB, err = openSQLite(dsn, o)
	default:
		sqlDB, err = openPostgres(dsn, o)
	}
	if err != nil {
		return nil, err
	}

	// Apply pool tuning parameters.
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(maxConnLifetime)
	sqlDB.SetConnMaxIdleTime(maxConnIdleTime)

	db := &DB{DB: sqlDB, dialect: dialect}

	// Validate that we can actually reach the dataset.
	if err := db.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	o.logger.Info("dataset connected",
		slog.String("driver", dialect.Name()),
		slog.Bool("read_only", o.readOnly),
		slog.Int("max_conns", maxConns),
	)

	return db, nil
}

// openSQLite opens a dataset file. Pragmas travel in the DSN so that every
// pooled connection gets them, not only the first one.
func openSQLite(path string, o options) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.StorageUnavailable(fmt.Errorf("database: dataset file %s: %w", path, err))
	}
	if info.IsDir() {
		return nil, apperr.StorageUnavailable(fmt.Errorf("database: dataset path %s is a directory", path))
	}

	return sql.Open("sqlite", sqliteDSN(path, o))
}

// sqliteDSN renders a file: URI with the modernc _pragma parameters.
func sqliteDSN(path string, o options) string {
	query := url.Values{}

	// mode=rw refuses to create a missing file; mode=ro also refuses writes.
	if o.readOnly {
		query.Set("mode", "ro")
	} else {
		query.Set("mode", "rw")
		query.Add("_pragma", "journal_mode(WAL)")
		query.Add("_pragma", "synchronous(NORMAL)")
	}

	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.busyTimeout))
	if o.cacheSize != 0 {
		query.Add("_pragma", fmt.Sprintf("cache_size(%d)", o.cacheSize))
	}
	if o.tempMemory {
		query.Add("_pragma", "temp_store(MEMORY)")
	}

	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + query.Encode()
}

// openPostgres opens the mirror through the pgx stdlib adapter.
func openPostgres(dsn string, o options) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: invalid DSN: %w", err)
	}

	// Set a per-connection statement timeout to avoid runaway queries.
	connConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", defaultStatementTimeout.Milliseconds())
	if o.readOnly {
		connConfig.RuntimeParams["default_transaction_read_only"] = "on"
	}

	return stdlib.OpenDB(*connConfig), nil
}

// Ping verifies that the dataset is reachable and that the story table exists.
func (db *DB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return apperr.StorageUnavailable(fmt.Errorf("database: ping failed: %w", err))
	}

	return nil
}

// # Scoped Sessions

// Session checks out one pooled connection, runs fn on it, and releases the
// connection on every exit path, including panics and errors.
func (db *DB) Session(ctx context.Context, fn func(conn *sql.Conn) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return dberr.Wrap(err, "acquire_session")
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) && err == nil {
			err = dberr.Wrap(cerr, "release_session")
		}
	}()

	return fn(conn)
}
