// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the HTTP client for the spread release service's
// administrative API.
//
// Every response, whatever shape the service used for it, is normalized
// into one canonical [Envelope]: a success flag, the decoded payload,
// and on failure a human-readable message plus a [Kind] classifying the
// failure as a domain error (the service answered success:false), a
// transport error (the network failed, or a non-2xx arrived without a
// structured body), or an authorization error. Bodies that wrap their
// payload twice ({"success":true,"data":{"success":true,"data":[...]}})
// are unwrapped once, and bodies without an envelope at all are treated
// as a bare payload. Callers never inspect response shapes.
//
// The endpoint methods on [Client] return (value, error); the error is
// always a *[Error] and can be classified with [IsKind].
//
// Authenticated endpoints carry a bearer credential from the configured
// [TokenSource]. A 401 on an authenticated endpoint invokes the
// unauthorized handler (see [Client.SetUnauthorizedHandler]) with the
// token the request carried, before the call returns. A caller that
// sees a [KindUnauthorized] error can assume the session holding that
// token has been torn down. The gateway only detects the condition;
// what happens on it is the session guard's policy.
//
// No request is ever retried.
package gateway
