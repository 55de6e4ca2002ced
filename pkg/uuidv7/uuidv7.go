// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 generates time-ordered identifiers for request correlation.
//
// Request IDs sort by creation time, so log lines of concurrent requests can
// be ordered without parsing timestamps.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7 string. If the clock-based generator fails it falls
// back to a random UUIDv4 rather than failing the request.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version. Client-supplied
// request IDs that do not are replaced.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
