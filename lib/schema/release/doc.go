// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package release defines the entity types exchanged with the spread
// release-distribution service: [App], [Environment], [Version], and
// [Bundle], forming the ownership chain application → environment →
// version → bundle, plus the operator-facing [User], [AuthKey], and
// [SetupStatus] types and the request bodies for each mutation.
//
// A Version's CurrentBundleID is the single source of truth for which
// Bundle its clients receive. [Bundle.IsActive] is derived from it by
// [MarkActive] and is never sent to or trusted from the service.
// [SplitActive] produces the active slot and the publish history in
// descending SequenceID order, which is how every front end renders a
// version.
package release
