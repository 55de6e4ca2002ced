// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder rendered for missing values.
const missing = "N/A"

// DefaultTruncate is the length used by list views.
const DefaultTruncate = 100

var printer = message.NewPrinter(language.English)

// funcs is the helper set shared by every page.
var funcs = template.FuncMap{
	"number":   Number,
	"truncate": Truncate,
	"pageURL":  PageURL,
	"inc":      func(i int) int { return i + 1 },
	"dict":     dict,
}

// Number formats a count with thousands separators. Nil pointers and
// unsupported values render as N/A.
func Number(value any) string {
	switch n := value.(type) {
	case int:
		return printer.Sprintf("%d", n)
	case int64:
		return printer.Sprintf("%d", n)
	case *int64:
		if n == nil {
			return missing
		}
		return printer.Sprintf("%d", *n)
	case float64:
		return printer.Sprintf("%.0f", n)
	}
	return missing
}

// Truncate shortens text to at most max characters, ending with "...".
// Empty text renders as N/A.
func Truncate(text string, max int) string {
	if text == "" {
		return missing
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	if max <= 3 {
		return string([]rune(text)[:max])
	}
	return string([]rune(text)[:max-3]) + "..."
}

// PageURL keeps the current filters and points at page n.
func PageURL(query url.Values, n int) string {
	next := url.Values{}
	for key, values := range query {
		next[key] = values
	}
	next.Set("page", strconv.Itoa(n))
	return "?" + next.Encode()
}

// dict builds a map from key/value pairs so a sub-template can take several
// arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
