// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the operator's authentication lifecycle: the
// stored bearer credential, its validation against the release service,
// and the forced logout that follows a rejected credential.
//
// A [Guard] moves between three states. It starts in
// [StateValidating] when a credential is stored and in
// [StateUnauthenticated] otherwise. [Guard.Validate] resolves the
// identity behind the credential; success moves to
// [StateAuthenticated], rejection moves to [StateUnauthenticated] and
// removes the credential. Logout and an observed 401 both return to
// [StateUnauthenticated] with the same side-effect order: clear the
// credential, clear the entity cache, navigate to the login route.
// Clearing the cache before navigating means whatever renders the login
// route can never read protected data from the previous session.
//
// Credentials persist through a [TokenStore]. [FileTokenStore] is the
// on-disk form used by the CLI; [MemoryTokenStore] serves embedding and
// tests.
package session
