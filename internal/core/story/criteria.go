// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story

import (
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/validate"
)

// Query parameter names recognised by search.
const (
	ParamTitle    = "title"
	ParamAuthor   = "author"
	ParamCategory = "category"
	ParamGenre    = "genre"
	ParamLanguage = "language"
	ParamStatus   = "status"
	ParamRating   = "rating"
	ParamMinWords = "min_words"
	ParamMaxWords = "max_words"
)

// ParseCriteria reads the search filters from query values.
//
// Values are trimmed and blanks are ignored. A word bound that is not a whole
// number, or is negative, is an InvalidArgument error; it is never dropped.
func ParseCriteria(q url.Values) (Criteria, error) {
	get := func(key string) string { return strings.TrimSpace(q.Get(key)) }

	c := Criteria{
		Title:    get(ParamTitle),
		Author:   get(ParamAuthor),
		Category: get(ParamCategory),
		Genre:    get(ParamGenre),
		Language: get(ParamLanguage),
		Status:   get(ParamStatus),
		Rating:   get(ParamRating),
	}

	v := &validate.Validator{}
	v.Integer(ParamMinWords, q.Get(ParamMinWords), &c.MinWords).
		Integer(ParamMaxWords, q.Get(ParamMaxWords), &c.MaxWords).
		NonNegative(ParamMinWords, c.MinWords).
		NonNegative(ParamMaxWords, c.MaxWords)

	if err := v.Err(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Query renders the criteria back to query values, for pagination links.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}

	set(ParamTitle, c.Title)
	set(ParamAuthor, c.Author)
	set(ParamCategory, c.Category)
	set(ParamGenre, c.Genre)
	set(ParamLanguage, c.Language)
	set(ParamStatus, c.Status)
	set(ParamRating, c.Rating)
	if c.MinWords != nil {
		q.Set(ParamMinWords, strconv.FormatInt(*c.MinWords, 10))
	}
	if c.MaxWords != nil {
		q.Set(ParamMaxWords, strconv.FormatInt(*c.MaxWords, 10))
	}
	return q
}

// # Predicate Builder

// Predicate renders the criteria as a conjunction with one bound parameter
// per clause. An empty result means "match everything".
func (c Criteria) Predicate(d database.Dialect) sq.And {
	where := sq.And{}

	// 1. Substring filters
	for _, f := range []struct{ column, value string }{
		{schema.Story.Title, c.Title},
		{schema.Story.Author, c.Author},
		{schema.Story.Category, c.Category},
		{schema.Story.Genre, c.Genre},
	} {
		if f.value != "" {
			where = append(where, sq.Expr(d.ContainsFold(f.column), "%"+EscapeLike(f.value)+"%"))
		}
	}

	// 2. Exact-match filters
	for _, f := range []struct{ column, value string }{
		{schema.Story.Language, c.Language},
		{schema.Story.Status, c.Status},
		{schema.Story.Rating, c.Rating},
	} {
		if f.value != "" {
			where = append(where, sq.Eq{f.column: f.value})
		}
	}

	// 3. Inclusive numeric range
	if c.MinWords != nil {
		where = append(where, sq.GtOrEq{schema.Story.WordCount: *c.MinWords})
	}
	if c.MaxWords != nil {
		where = append(where, sq.LtOrEq{schema.Story.WordCount: *c.MaxWords})
	}

	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes LIKE wildcards in user input match literally. It pairs
// with the ESCAPE '\' clause of [database.Dialect.ContainsFold].
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
