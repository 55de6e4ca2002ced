// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/pkg/pagination"
)

func TestNew_Clamp(t *testing.T) {
	p, err := pagination.New(1, 500, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, p.PerPage)
	assert.EqualValues(t, 0, p.Offset())

	p, err = pagination.New(3, 20, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 40, p.Offset())
}

func TestOffset_Saturates(t *testing.T) {
	p, err := pagination.New(100000000000000000, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64), p.Offset())

	p = pagination.Params{Page: math.MaxInt, PerPage: 1}
	assert.Equal(t, uint64(math.MaxInt-1), p.Offset())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
	}{
		{"zero_page", 0, 10},
		{"negative_page", -1, 10},
		{"zero_size", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pagination.New(tt.page, tt.perPage, 100)
			assert.True(t, apperr.HasCode(err, apperr.CodeInvalidArgument))
		})
	}
}

func TestFromQuery(t *testing.T) {
	p, err := pagination.FromQuery(url.Values{}, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 1, PerPage: 50}, p)

	p, err = pagination.FromQuery(url.Values{"page": {"2"}, "per_page": {"1000"}}, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 2, PerPage: 100}, p)

	_, err = pagination.FromQuery(url.Values{"page": {"two"}}, 50, 100)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "page", ae.Details[0].Field)
}

func TestMetaAndView(t *testing.T) {
	meta := pagination.NewMeta(pagination.Params{Page: 2, PerPage: 10}, 25)
	assert.EqualValues(t, 3, meta.TotalPages)

	view := pagination.NewView(meta)
	assert.True(t, view.HasPrev)
	assert.True(t, view.HasNext)
	assert.Equal(t, 1, view.PrevNum)
	assert.Equal(t, 3, view.NextNum)

	last := pagination.NewView(pagination.NewMeta(pagination.Params{Page: 3, PerPage: 10}, 25))
	assert.False(t, last.HasNext)

	empty := pagination.NewView(pagination.NewMeta(pagination.Params{Page: 1, PerPage: 10}, 0))
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)
	assert.EqualValues(t, 0, empty.TotalPages)
}
