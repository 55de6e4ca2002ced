// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/taibuivan/ficdex/pkg/pointer"
)

/*
NullCount is the scan target for word and chapter counters and their sums.

Description: Dumps written by dataframe tools store nullable integer columns
with REAL affinity, so SQLite hands back float64 (1500000.0) where an INTEGER
column would give int64. A Postgres SUM over bigint arrives as numeric text.
NullCount accepts all of these and truncates toward zero, which is how the
counters are read everywhere else.
*/
type NullCount struct {
	sql.Null[int64]
}

// Scan implements [sql.Scanner].
func (n *NullCount) Scan(src any) error {
	n.V, n.Valid = 0, false

	switch v := src.(type) {
	case nil:
		return nil
	case int64:
		n.V = v
	case int32:
		n.V = int64(v)
	case float64:
		return n.fromFloat(v)
	case []byte:
		return n.fromText(string(v))
	case string:
		return n.fromText(v)
	default:
		return fmt.Errorf("count: unsupported type %T", src)
	}
	n.Valid = true
	return nil
}

func (n *NullCount) fromFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return fmt.Errorf("count: %v out of range", f)
	}
	n.V, n.Valid = int64(f), true
	return nil
}

func (n *NullCount) fromText(s string) error {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		n.V, n.Valid = i, true
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("count: %q is not numeric", s)
	}
	return n.fromFloat(f)
}

// Ptr returns nil for NULL, a pointer to the value otherwise.
func (n NullCount) Ptr() *int64 {
	return pointer.FromNull(n.Null)
}

// CountOf converts an already-scanned driver value, for rows read into
// []any. Values that are not numeric read as unset.
func CountOf(src any) *int64 {
	var n NullCount
	if err := n.Scan(src); err != nil {
		return nil
	}
	return n.Ptr()
}
