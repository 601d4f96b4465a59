// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entitycache holds the client's last-known-good copy of the
// release service's entities: applications, environments, versions,
// and bundles.
//
// Each entity kind lives in its own [Collection], keyed by id and kept
// in insertion order, with a loading flag and an error message. A
// failed fetch records its error on the collection and leaves the data
// alone, so views keep showing the last good state. [Cache.Reset]
// clears everything and is what logout and session expiry call.
//
// The cache is a passive store. It never talks to the network and has
// no opinion about ordering between concurrent writers: the last
// ReplaceAll wins. Sequencing of fetches and mutations is the release
// coordinator's job. The [Pending] set records which entity ids have a
// mutation in flight so the coordinator can refuse a second one.
//
// Between process invocations the cache persists as a snapshot file;
// see [WriteSnapshot] and [ReadSnapshot] for the format. Loading flags,
// errors, and pending marks are runtime state and are not persisted.
package entitycache
