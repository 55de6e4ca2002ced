// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
)

/*
TestWrap_Classification maps driver errors onto the error taxonomy.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", sql.ErrNoRows, apperr.CodeNotFound},
		{"wrapped_no_rows", errors.Join(errors.New("scan"), sql.ErrNoRows), apperr.CodeNotFound},
		{"pg_undefined_table", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, apperr.CodeStorageUnavailable},
		{"pg_connection_failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, apperr.CodeStorageUnavailable},
		{"pg_syntax_error", &pgconn.PgError{Code: pgerrcode.SyntaxError}, apperr.CodeInternal},
		{"plain_error", errors.New("boom"), apperr.CodeInternal},
		{"already_classified", apperr.InvalidArgument("bad"), apperr.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			ae := apperr.As(wrapped)
			if assert.NotNil(t, ae) {
				assert.Equal(t, tt.code, ae.Code)
			}
		})
	}
}

/*
TestWrap_Nil keeps nil errors nil.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestWrap_KeepsCause verifies that the cause chain survives for logging.
*/
func TestWrap_KeepsCause(t *testing.T) {
	root := errors.New("disk on fire")
	wrapped := dberr.Wrap(root, "search_stories")

	assert.ErrorIs(t, wrapped, root)
	assert.Contains(t, apperr.As(wrapped).Cause.Error(), "search_stories")
}

/*
TestWrapLookup names the missing resource per call and leaves other errors
to the shared classification.
*/
func TestWrapLookup(t *testing.T) {
	story := apperr.As(dberr.WrapLookup(sql.ErrNoRows, "find_story", "Story"))
	if assert.NotNil(t, story) {
		assert.Equal(t, apperr.CodeNotFound, story.Code)
		assert.Equal(t, "Story not found", story.Message)
	}

	other := apperr.As(dberr.WrapLookup(sql.ErrNoRows, "find_index", "Index"))
	if assert.NotNil(t, other) {
		assert.Equal(t, "Index not found", other.Message)
	}
	assert.NotSame(t, story, other)

	generic := apperr.As(dberr.Wrap(sql.ErrNoRows, "scan"))
	if assert.NotNil(t, generic) {
		assert.Equal(t, "Record not found", generic.Message)
	}

	internal := apperr.As(dberr.WrapLookup(errors.New("boom"), "find_story", "Story"))
	if assert.NotNil(t, internal) {
		assert.Equal(t, apperr.CodeInternal, internal.Code)
	}
}
