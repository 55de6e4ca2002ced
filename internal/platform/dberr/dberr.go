// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Record")
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 3. Dataset missing, locked or unreadable
	if IsUnavailable(err) {
		return apperr.StorageUnavailable(cause)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(cause)
}

// WrapLookup is [Wrap] for single-row lookups: a missing row is reported as
// "<resource> not found".
func WrapLookup(err error, action, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return Wrap(err, action)
}

// IsUnavailable reports whether err means the dataset cannot be read at all,
// as opposed to a single malformed statement.
func IsUnavailable(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_BUSY,
			sqlite3.SQLITE_LOCKED,
			sqlite3.SQLITE_NOTADB,
			sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_CORRUPT,
			sqlite3.SQLITE_PERM:
			return true
		}
		// A dump without the story table is as unusable as a missing file.
		return strings.Contains(sqliteErr.Error(), "no such table")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code) ||
			pgErr.Code == pgerrcode.UndefinedTable ||
			pgErr.Code == pgerrcode.CannotConnectNow ||
			pgErr.Code == pgerrcode.AdminShutdown
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
