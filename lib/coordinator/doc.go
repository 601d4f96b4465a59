// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package coordinator composes release service calls with entity cache
// writes: the multi-step reads that load a version with its bundles,
// and the mutations that change which bundle is served and how.
//
// Each mutation follows a fixed discipline. Activation and rollback
// write nothing locally; on success they reload the version and its
// bundles so the service's currentBundleId decides which bundle is
// active. Enabling and disabling writes the new value optimistically
// and restores the value captured before the write if the service
// refuses. The mandatory flag is written only after the service
// accepts it.
//
// A second mutation on an id that already has one in flight is refused
// with [ErrMutationPending]. Loads are never serialized: two loads of
// the same version race, and the later response wins in the cache.
package coordinator
