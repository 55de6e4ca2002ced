// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used in the service layer and by the request parsers that
// turn query strings into typed criteria. It ensures that the Query Engine
// only operates on semantically valid input and never silently coerces a
// malformed value into a different valid query.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Integer parses value as a base-10 integer into target.
//
// A blank value leaves target untouched and is not an error; a malformed
// value records a failure instead of being ignored.
func (v *Validator) Integer(field, value string, target **int64) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		v.add(field, "Must be a whole number")
		return v
	}

	*target = &n
	return v
}

// Positive fails if value is lower than 1.
func (v *Validator) Positive(field string, value int) *Validator {
	if value < 1 {
		v.add(field, "Must be greater than zero")
	}
	return v
}

// NonNegative fails if value is set and lower than 0.
func (v *Validator) NonNegative(field string, value *int64) *Validator {
	if value != nil && *value < 0 {
		v.add(field, "Must not be negative")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Err returns an [apperr.AppError] (INVALID_ARGUMENT) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.InvalidArgument("Invalid request parameters", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
