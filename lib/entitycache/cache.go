// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitycache

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/spread/lib/schema/release"
)

// Kind names one of the cache's collections.
type Kind string

const (
	KindApp         Kind = "app"
	KindEnvironment Kind = "environment"
	KindVersion     Kind = "version"
	KindBundle      Kind = "bundle"
)

// Kinds lists every collection kind in display order.
var Kinds = []Kind{KindApp, KindEnvironment, KindVersion, KindBundle}

// ParseKind accepts a kind name, singular or plural, case-insensitive.
func ParseKind(name string) (Kind, error) {
	normalized := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s")
	for _, kind := range Kinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("entitycache: unknown kind %q", name)
}

// statusHolder is the kind-independent part of a Collection.
type statusHolder interface {
	SetLoading(bool)
	SetError(string)
	Status() Status
	Len() int
	reset()
}

// Cache is the client's store of last-known-good release entities.
type Cache struct {
	Apps         *Collection[release.App]
	Environments *Collection[release.Environment]
	Versions     *Collection[release.Version]
	Bundles      *Collection[release.Bundle]

	// Pending tracks entity ids with a mutation in flight.
	Pending *Pending
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		Apps:         newCollection[release.App](),
		Environments: newCollection[release.Environment](),
		Versions:     newCollection[release.Version](),
		Bundles:      newCollection[release.Bundle](),
		Pending:      NewPending(),
	}
}

func (c *Cache) collection(kind Kind) statusHolder {
	switch kind {
	case KindApp:
		return c.Apps
	case KindEnvironment:
		return c.Environments
	case KindVersion:
		return c.Versions
	case KindBundle:
		return c.Bundles
	default:
		panic(fmt.Sprintf("entitycache: unknown kind %q", kind))
	}
}

// Status returns the fetch state of the given collection.
func (c *Cache) Status(kind Kind) Status {
	return c.collection(kind).Status()
}

// SetLoading records whether a fetch for the given collection is in flight.
func (c *Cache) SetLoading(kind Kind, loading bool) {
	c.collection(kind).SetLoading(loading)
}

// SetError records a failure on the given collection.
func (c *Cache) SetError(kind Kind, message string) {
	c.collection(kind).SetError(message)
}

// Len returns the number of entities in the given collection.
func (c *Cache) Len(kind Kind) int {
	return c.collection(kind).Len()
}

// Reset empties every collection, clears every status, and drops all
// pending marks. Called on logout and session expiry so no data from
// one session survives into the next.
func (c *Cache) Reset() {
	for _, kind := range Kinds {
		c.collection(kind).reset()
	}
	c.Pending.reset()
}

// BundlesOf returns the cached bundles belonging to versionID in
// insertion order.
func (c *Cache) BundlesOf(versionID string) []release.Bundle {
	all := c.Bundles.List()
	result := make([]release.Bundle, 0, len(all))
	for _, bundle := range all {
		if bundle.VersionID == versionID {
			result = append(result, bundle)
		}
	}
	return result
}
