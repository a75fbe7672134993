// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors surfaced by the service layer. Handlers map these to
// HTTP status codes; nothing below the handler layer retries them.
var (
	// ErrNotFound indicates the requested company, page or section does not
	// exist, or does not belong to the caller's company.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState indicates an operation that is not valid for the
	// page's current lifecycle state, such as discarding a page that has
	// never been published.
	ErrInvalidState = errors.New("invalid page state")
)

// ValidationError reports one or more invalid fields in a section payload.
// It is returned by section data validation and surfaced to the caller as a
// 400 response; it is never retried.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem with the named field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

// HasErrors reports whether any field problems were recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
