// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import "fmt"

// SessionRef is an opaque handle into a [Registry], used in place of a
// raw back-pointer from a ticket to the session handler that created
// it. Looking a SessionRef up can fail — the session may have closed —
// and that failure is the normal, expected way an orphaned ticket is
// discovered.
type SessionRef uint64

// Ticket is the pipeline's unit of work: an item instance, its owner,
// and a reference to the session that should be notified when it's
// ready.
//
// Key uniquely identifies this item instance as
// "<owner>:<sequence>:<item>". The sequence number (assigned by the
// owning session at enqueue time) disambiguates two identical
// (quantity, category) lines from the same customer; without it,
// "1 tea" ordered twice would collide on a single map key. The
// sequence is never shown in human-readable text — stage listings and
// notifications render just the item, "<qty> <category>".
type Ticket struct {
	Owner   int
	Key     string
	Item    Item
	Handler SessionRef
}

// NewTicketKey builds the pipeline key for an item instance owned by
// owner, disambiguated by seq.
func NewTicketKey(owner int, seq uint64, item Item) string {
	return fmt.Sprintf("%d:%d:%s", owner, seq, item)
}
