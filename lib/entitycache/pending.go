// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitycache

import "sync"

type pendingKey struct {
	kind Kind
	id   string
}

// Pending is the set of entity ids with a mutation in flight.
type Pending struct {
	mu     sync.Mutex
	active map[pendingKey]struct{}
}

// NewPending returns an empty pending set.
func NewPending() *Pending {
	return &Pending{active: make(map[pendingKey]struct{})}
}

// Begin marks id as busy. It returns false, and changes nothing, if id
// already has a mutation in flight.
func (p *Pending) Begin(kind Kind, id string) bool {
	key := pendingKey{kind, id}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.active[key]; busy {
		return false
	}
	p.active[key] = struct{}{}
	return true
}

// End clears the mark set by Begin.
func (p *Pending) End(kind Kind, id string) {
	p.mu.Lock()
	delete(p.active, pendingKey{kind, id})
	p.mu.Unlock()
}

// Active reports whether id has a mutation in flight.
func (p *Pending) Active(kind Kind, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.active[pendingKey{kind, id}]
	return busy
}

func (p *Pending) reset() {
	p.mu.Lock()
	p.active = make(map[pendingKey]struct{})
	p.mu.Unlock()
}
