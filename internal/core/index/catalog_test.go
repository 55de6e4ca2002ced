// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ficdex/internal/core/index"
	"github.com/taibuivan/ficdex/internal/platform/database"
)

func TestCatalog_Shape(t *testing.T) {
	catalog := index.Catalog()
	require.Len(t, catalog, 19)

	seen := map[string]bool{}
	for _, spec := range catalog {
		assert.NoError(t, spec.Validate(), spec.Name)
		assert.False(t, seen[spec.Name], "duplicate %s", spec.Name)
		assert.NotEmpty(t, spec.Description, spec.Name)
		seen[spec.Name] = true
	}
}

func TestCreateSQL(t *testing.T) {
	byName := map[string]index.Spec{}
	for _, spec := range index.Catalog() {
		byName[spec.Name] = spec
	}

	tests := []struct {
		name    string
		dialect database.Dialect
		want    string
	}{
		{"idx_author", database.SQLite, "CREATE INDEX IF NOT EXISTS idx_author ON metadata_full (Author COLLATE NOCASE)"},
		{"idx_author", database.Postgres, "CREATE INDEX IF NOT EXISTS idx_author ON metadata_full (lower(Author))"},
		{"idx_updated", database.SQLite, "CREATE INDEX IF NOT EXISTS idx_updated ON metadata_full (Updated DESC)"},
		{"idx_category_wordcount", database.SQLite, "CREATE INDEX IF NOT EXISTS idx_category_wordcount ON metadata_full (Category, word_count DESC)"},
		{"idx_author_count", database.Postgres, "CREATE INDEX IF NOT EXISTS idx_author_count ON metadata_full (Author) WHERE Author IS NOT NULL AND Author <> ''"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.dialect.Name(), func(t *testing.T) {
			got, err := byName[tt.name].CreateSQL(tt.dialect, "metadata_full")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		spec index.Spec
	}{
		{"empty_name", index.Spec{Columns: []index.Column{{Name: "Author"}}}},
		{"injected_name", index.Spec{Name: "x; DROP TABLE metadata_full", Columns: []index.Column{{Name: "Author"}}}},
		{"no_columns", index.Spec{Name: "idx_none"}},
		{"bad_column", index.Spec{Name: "idx_bad", Columns: []index.Column{{Name: "Author)"}}}},
		{"bad_predicate", index.Spec{Name: "idx_bad", Columns: []index.Column{{Name: "Author"}}, NonEmpty: "1=1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.CreateSQL(database.SQLite, "metadata_full")
			assert.Error(t, err)
		})
	}

	_, err := index.DropSQL("idx_ok; --")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		definition string
		want       index.Kind
	}{
		{"CREATE INDEX idx_a ON metadata_full (Author COLLATE NOCASE)", index.KindSingle},
		{"CREATE INDEX idx_a ON metadata_full(Category, Status)", index.KindComposite},
		{"CREATE UNIQUE INDEX u ON metadata_full (Title)", index.KindUnique},
		{"CREATE INDEX idx_a ON public.metadata_full USING btree (lower(author))", index.KindSingle},
		{"CREATE INDEX c ON metadata_full (Author) WHERE Author IS NOT NULL AND Author <> ''", index.KindSingle},
		{"CREATE INDEX f ON metadata_full USING btree (language, status, rating, word_count)", index.KindComposite},
		{"", index.KindSingle},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, index.KindOf(tt.definition), tt.definition)
	}
}
