// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNone marks a successful envelope.
	KindNone Kind = iota

	// KindDomain means the service processed the request and refused
	// it with a message (success:false). The message is meant for the
	// operator.
	KindDomain

	// KindTransport means the request did not produce a structured
	// answer: connection failure, timeout, unreadable body, or a
	// non-2xx status with no envelope. The message is generic; Cause
	// carries the detail.
	KindTransport

	// KindUnauthorized means an authenticated endpoint answered 401.
	// By the time the caller sees it, the unauthorized handler has run.
	KindUnauthorized
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDomain:
		return "domain"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the error type of every failed gateway call. Callers can
// extract it with errors.As:
//
//	var gatewayErr *gateway.Error
//	if errors.As(err, &gatewayErr) && gatewayErr.Status == http.StatusNotFound { ... }
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Status is the HTTP status code, or 0 when no response arrived.
	Status int

	// Message is the operator-facing description.
	Message string

	// Cause is the underlying transport or decoding error, if any.
	Cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s (HTTP %d)", e.Message, e.Status)
	}
	return "gateway: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Kind == kind
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not a
// *Error or no response arrived.
func StatusOf(err error) int {
	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Status
	}
	return 0
}
