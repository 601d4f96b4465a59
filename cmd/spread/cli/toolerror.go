// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/spread/gateway"
	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/session"
)

// ErrorCategory classifies command errors so scripts consuming --json
// output can decide whether to retry, fix input, or escalate without
// parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: missing or malformed input. Fix it and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced app, environment, version, or
	// bundle does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: no session, an expired session, or a role
	// that may not perform the operation.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the operation conflicts with existing state,
	// including a change to the same item already in progress.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: network failure, timeout, or an overloaded
	// service. Back off and retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error so errors.Is and errors.As still see the chain.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error: the caller lacks a session or permission.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err, or "" for nil.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	var toolErr *ToolError
	if errors.As(FromGateway(err), &toolErr) {
		return toolErr.Category
	}
	return CategoryInternal
}

// FromGateway categorizes errors coming back from the gateway, the
// coordinator, and the session guard. Errors that are already
// categorized pass through unchanged; nil stays nil.
func FromGateway(err error) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	category := CategoryInternal
	switch {
	case coordinator.IsValidation(err):
		category = CategoryValidation
	case errors.Is(err, coordinator.ErrMutationPending):
		category = CategoryConflict
	case errors.Is(err, coordinator.ErrNotLoaded):
		category = CategoryNotFound
	case errors.Is(err, session.ErrUnauthenticated):
		return &ToolError{Category: CategoryForbidden,
			Err: fmt.Errorf("%w\n\nRun 'spread login' to sign in.", err)}
	case gateway.IsKind(err, gateway.KindUnauthorized):
		category = CategoryForbidden
	case gateway.IsKind(err, gateway.KindTransport),
		errors.Is(err, context.DeadlineExceeded):
		category = CategoryTransient
	case gateway.IsKind(err, gateway.KindDomain):
		category = categoryForStatus(gateway.StatusOf(err))
	}
	return &ToolError{Category: category, Err: err}
}

// categoryForStatus maps the HTTP status of a refused request.
func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusConflict:
		return CategoryConflict
	case status == http.StatusTooManyRequests,
		status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return CategoryTransient
	case status >= 500:
		return CategoryInternal
	default:
		return CategoryValidation
	}
}
