// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer converts between nullable SQL scans and the optional pointer
fields of the API models.

A nil pointer is "unset" (JSON null), which the dataset distinguishes from 0.
*/
package pointer

import "database/sql"

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// FromNull returns nil for an invalid (NULL) scan, a pointer to the value
// otherwise.
func FromNull[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	return &n.V
}
