// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package index maintains the secondary indexes of the story dataset.

The catalog is plain data. One routine turns an entry into DDL for the active
dialect, so adding an index never means writing SQL by hand.
*/
package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
)

// Column is one key of an index.
type Column struct {
	Name string
	// Fold makes the key serve case-insensitive lookups.
	Fold bool
	Desc bool
}

// Spec describes one managed index.
type Spec struct {
	Name    string
	Columns []Column
	// NonEmpty, when set, makes the index partial: rows where that column is
	// NULL or empty are left out.
	NonEmpty    string
	Description string
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// # Catalog

// Catalog returns the managed indexes in creation order.
func Catalog() []Spec {
	s := schema.Story
	key := func(name string) Column { return Column{Name: name} }
	fold := func(name string) Column { return Column{Name: name, Fold: true} }
	desc := func(name string) Column { return Column{Name: name, Desc: true} }

	return []Spec{
		// Single-column keys.
		{Name: "idx_author", Columns: []Column{fold(s.Author)}, Description: "Fast author searches and author pages"},
		{Name: "idx_category", Columns: []Column{fold(s.Category)}, Description: "Fast fandom/category searches"},
		{Name: "idx_language", Columns: []Column{key(s.Language)}, Description: "Fast language filtering"},
		{Name: "idx_status", Columns: []Column{key(s.Status)}, Description: "Fast completion status filtering"},
		{Name: "idx_rating", Columns: []Column{key(s.Rating)}, Description: "Fast rating filtering"},
		{Name: "idx_word_count", Columns: []Column{key(s.WordCount)}, Description: "Fast word count range searches"},
		{Name: "idx_chapter_count", Columns: []Column{key(s.ChapterCount)}, Description: "Fast chapter count filtering"},
		{Name: "idx_updated", Columns: []Column{desc(s.Updated)}, Description: "Fast ordering by update date (newest first)"},
		{Name: "idx_published", Columns: []Column{desc(s.Published)}, Description: "Fast ordering by publication date"},
		{Name: "idx_title_text", Columns: []Column{fold(s.Title)}, Description: "Case-insensitive title searches"},
		{Name: "idx_genre_text", Columns: []Column{fold(s.Genre)}, Description: "Case-insensitive genre searches"},

		// Composites for common filter combinations.
		{Name: "idx_category_status", Columns: []Column{key(s.Category), key(s.Status)}, Description: "Fandom + completion status searches"},
		{Name: "idx_author_updated", Columns: []Column{key(s.Author), desc(s.Updated)}, Description: "Author searches ordered by recent updates"},
		{Name: "idx_category_wordcount", Columns: []Column{key(s.Category), desc(s.WordCount)}, Description: "Fandom searches ordered by word count"},
		{Name: "idx_language_status", Columns: []Column{key(s.Language), key(s.Status)}, Description: "Language + status searches"},
		{Name: "idx_rating_wordcount", Columns: []Column{key(s.Rating), key(s.WordCount)}, Description: "Rating + word count searches"},

		// Partial indexes behind the ranking aggregates.
		{Name: "idx_author_count", Columns: []Column{key(s.Author)}, NonEmpty: s.Author, Description: "Author statistics and top author queries"},
		{Name: "idx_category_count", Columns: []Column{key(s.Category)}, NonEmpty: s.Category, Description: "Fandom statistics and top fandom queries"},

		{
			Name:        "idx_search_filter",
			Columns:     []Column{key(s.Language), key(s.Status), key(s.Rating), key(s.WordCount)},
			Description: "Multi-filter searches",
		},
	}
}

// # DDL Rendering

// Validate reports a malformed entry. Names end up in DDL unquoted, so they
// must be plain identifiers.
func (spec Spec) Validate() error {
	if !identifier.MatchString(spec.Name) {
		return fmt.Errorf("invalid index name %q", spec.Name)
	}
	if len(spec.Columns) == 0 {
		return fmt.Errorf("index %s has no columns", spec.Name)
	}
	for _, c := range spec.Columns {
		if !identifier.MatchString(c.Name) {
			return fmt.Errorf("index %s: invalid column %q", spec.Name, c.Name)
		}
	}
	if spec.NonEmpty != "" && !identifier.MatchString(spec.NonEmpty) {
		return fmt.Errorf("index %s: invalid predicate column %q", spec.Name, spec.NonEmpty)
	}
	return nil
}

/*
CreateSQL renders the CREATE INDEX statement of spec on table.

Parameters:
  - d: The dialect that decides how folded keys are expressed.
  - table: The indexed table.

Returns:
  - string: An idempotent CREATE INDEX IF NOT EXISTS statement.
  - error: When the entry fails [Spec.Validate].
*/
func (spec Spec) CreateSQL(d database.Dialect, table string) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		k := c.Name
		if c.Fold {
			k = d.FoldKey(c.Name)
		}
		if c.Desc {
			k += " DESC"
		}
		keys = append(keys, k)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %s ON %s (%s)", spec.Name, table, strings.Join(keys, ", "))
	if spec.NonEmpty != "" {
		fmt.Fprintf(&b, " WHERE %[1]s IS NOT NULL AND %[1]s <> ''", spec.NonEmpty)
	}
	return b.String(), nil
}

// DropSQL renders the statement removing the index called name.
func DropSQL(name string) (string, error) {
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("invalid index name %q", name)
	}
	return "DROP INDEX IF EXISTS " + name, nil
}

// # Kinds

// Kind classifies an existing index by its definition.
type Kind string

const (
	KindSingle    Kind = "SINGLE"
	KindComposite Kind = "COMPOSITE"
	KindUnique    Kind = "UNIQUE"
)

// KindOf classifies a CREATE INDEX definition as reported by the store. Only
// top-level commas of the key list count, so function keys such as
// lower(x) or a partial predicate do not make an index composite.
func KindOf(definition string) Kind {
	upper := strings.ToUpper(definition)
	if strings.HasPrefix(strings.TrimSpace(upper), "CREATE UNIQUE") {
		return KindUnique
	}

	open := strings.IndexByte(definition, '(')
	if open < 0 {
		return KindSingle
	}

	depth := 0
	for _, r := range definition[open:] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return KindSingle
			}
		case ',':
			if depth == 1 {
				return KindComposite
			}
		}
	}
	return KindSingle
}
