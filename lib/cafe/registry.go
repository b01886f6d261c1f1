// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"sync"
	"sync/atomic"
)

// Registry maps [SessionRef] handles to live [Session] values, and
// tracks which customer ids are currently active (connected) versus
// idle (connected, but owing nothing uncollected).
//
// A ticket never holds a pointer to the [Session] that created it —
// only a SessionRef. The worker pool looks the ref up when a brew
// completes; a miss means the session has closed, and the
// notification is silently dropped rather than assuming the handler
// is always live.
type Registry struct {
	mu       sync.Mutex
	sessions map[SessionRef]*Session
	active   map[int]SessionRef
	idle     map[int]string

	nextRef atomic.Uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[SessionRef]*Session),
		active:   make(map[int]SessionRef),
		idle:     make(map[int]string),
	}
}

// Register assigns a new SessionRef to s and marks its owner active.
// If owner was already active under a different session (a duplicate
// customer id), the previous entry is silently replaced:
// last-connect-wins.
func (r *Registry) Register(s *Session) SessionRef {
	ref := SessionRef(r.nextRef.Add(1))

	r.mu.Lock()
	r.sessions[ref] = s
	r.active[s.Owner] = ref
	delete(r.idle, s.Owner)
	r.mu.Unlock()

	return ref
}

// Unregister removes ref and clears owner's idle entry. It clears
// owner's active entry only if that entry still belongs to ref; when a
// newer session for the same owner has replaced it, owner stays
// active. Once owner's active entry is gone, any tray ticket still
// bearing owner's id is orphaned, since IsActive(owner) reports false.
func (r *Registry) Unregister(ref SessionRef, owner int) {
	r.mu.Lock()
	delete(r.sessions, ref)
	if r.active[owner] == ref {
		delete(r.active, owner)
	}
	delete(r.idle, owner)
	r.mu.Unlock()
}

// Lookup returns the session for ref, or ok=false if it has since
// closed.
func (r *Registry) Lookup(ref SessionRef) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[ref]
	return s, ok
}

// IsActive reports whether owner currently has a connected session.
func (r *Registry) IsActive(owner int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[owner]
	return ok
}

// MarkIdle records owner (display name) as idle: connected, but owing
// nothing uncollected. This map is a projection retained only for the
// stats dashboard; core correctness never consults it, since
// idle/connected state is also tracked directly on the Session.
func (r *Registry) MarkIdle(owner int, name string) {
	r.mu.Lock()
	r.idle[owner] = name
	r.mu.Unlock()
}

// MarkConnected clears owner's idle projection entry, if any.
func (r *Registry) MarkConnected(owner int) {
	r.mu.Lock()
	delete(r.idle, owner)
	r.mu.Unlock()
}

// Stats returns the number of active sessions and the number of
// currently idle customers, for the stats reporter.
func (r *Registry) Stats() (connected, idleCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active), len(r.idle)
}
