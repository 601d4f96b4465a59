// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitycache

import "sync"

// Entity is anything the cache can key by id.
type Entity interface {
	EntityID() string
}

// Status is the fetch state of one collection.
type Status struct {
	// Loading is true while a fetch for this collection is in flight.
	Loading bool

	// Error is the message of the most recent failed fetch. Cleared
	// by ReplaceAll and Upsert.
	Error string
}

// Collection is an ordered, id-keyed set of entities of one kind. All
// methods are safe for concurrent use; every read returns a copy.
type Collection[T Entity] struct {
	mu     sync.RWMutex
	order  []string
	items  map[string]T
	status Status
}

func newCollection[T Entity]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// List returns every entity in insertion order. The result is a fresh
// slice, never nil.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]T, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.items[id])
	}
	return result
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// ReplaceAll swaps the whole collection for items in one step. Readers
// observe either the old contents or the new, never a mix. When items
// repeats an id, the later entry wins and keeps the earlier position.
// The collection's error is cleared.
func (c *Collection[T]) ReplaceAll(items []T) {
	order := make([]string, 0, len(items))
	byID := make(map[string]T, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = item
	}

	c.mu.Lock()
	c.order = order
	c.items = byID
	c.status.Error = ""
	c.mu.Unlock()
}

// Upsert inserts item or replaces the entity with the same id in
// place. The collection's error is cleared.
func (c *Collection[T]) Upsert(item T) {
	id := item.EntityID()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
	c.status.Error = ""
}

// Update applies mutate to the entity with the given id and stores the
// result. It reports whether the entity existed; mutate is not called
// otherwise. mutate runs under the collection lock and must not call
// back into the collection. It must not change the entity's id.
func (c *Collection[T]) Update(id string, mutate func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, exists := c.items[id]
	if !exists {
		return false
	}
	mutate(&item)
	c.items[id] = item
	return true
}

// SetLoading records whether a fetch is in flight.
func (c *Collection[T]) SetLoading(loading bool) {
	c.mu.Lock()
	c.status.Loading = loading
	c.mu.Unlock()
}

// SetError records a failure and ends loading. The data is untouched.
// An empty message clears the error.
func (c *Collection[T]) SetError(message string) {
	c.mu.Lock()
	c.status.Error = message
	c.status.Loading = false
	c.mu.Unlock()
}

// Status returns the collection's fetch state.
func (c *Collection[T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Collection[T]) reset() {
	c.mu.Lock()
	c.order = nil
	c.items = make(map[string]T)
	c.status = Status{}
	c.mu.Unlock()
}
