// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrMutationPending is returned when the target id already has a
	// mutation in flight.
	ErrMutationPending = errors.New("coordinator: a change to this item is already in progress")

	// ErrBundleDisabled is returned when activation targets a bundle
	// with isValid=false.
	ErrBundleDisabled = errors.New("coordinator: bundle is disabled and cannot be activated")

	// ErrNotLoaded is returned when an operation needs an entity that
	// is not in the cache.
	ErrNotLoaded = errors.New("coordinator: not loaded")
)

// ValidationError reports operator input rejected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("coordinator: %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a *ValidationError or one of the
// sentinel errors that describe invalid operator intent.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrBundleDisabled)
}
