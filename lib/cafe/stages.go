// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"sync"
	"sync/atomic"
)

// ticketQueue is a FIFO queue of tickets supporting a context-aware
// blocking dequeue. It is the concurrent-native container the waiting
// and tray stages are both built from: tray additionally needs
// membership tests and predicate-based removal, which [TrayStage]
// layers on top.
type ticketQueue struct {
	mu     sync.Mutex
	items  []*Ticket
	notify chan struct{}
}

func newTicketQueue() *ticketQueue {
	return &ticketQueue{notify: make(chan struct{}, 1)}
}

// enqueue appends t to the tail.
func (q *ticketQueue) enqueue(t *Ticket) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// dequeue blocks until an item is available or ctx is done.
func (q *ticketQueue) dequeue(ctx context.Context) (*Ticket, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			t := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return t, true
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
			continue
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (q *ticketQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// WaitingStage is the FIFO queue of tickets not yet dispatched to a
// brew worker. The scheduler is its sole consumer; session handlers
// are its producers.
type WaitingStage struct {
	queue *ticketQueue
}

// NewWaitingStage returns an empty waiting stage.
func NewWaitingStage() *WaitingStage {
	return &WaitingStage{queue: newTicketQueue()}
}

// Enqueue appends a ticket to the tail of the waiting queue.
func (w *WaitingStage) Enqueue(t *Ticket) { w.queue.enqueue(t) }

// Dequeue blocks until a ticket is available or ctx is cancelled.
func (w *WaitingStage) Dequeue(ctx context.Context) (*Ticket, bool) {
	return w.queue.dequeue(ctx)
}

// Len reports the current queue depth. Intended for the stats
// reporter; callers must not rely on it for correctness since it can
// be stale the instant it is read.
func (w *WaitingStage) Len() int { return w.queue.len() }

// BrewingStage tracks which item-instance keys are currently brewing.
// Membership, not the marker value, is what the core logic reads.
type BrewingStage struct {
	mu  sync.Mutex
	set map[string]struct{}
}

// NewBrewingStage returns an empty brewing stage.
func NewBrewingStage() *BrewingStage {
	return &BrewingStage{set: make(map[string]struct{})}
}

// Insert marks key as currently brewing.
func (b *BrewingStage) Insert(key string) {
	b.mu.Lock()
	b.set[key] = struct{}{}
	b.mu.Unlock()
}

// Remove clears key's brewing marker.
func (b *BrewingStage) Remove(key string) {
	b.mu.Lock()
	delete(b.set, key)
	b.mu.Unlock()
}

// ContainsKey reports whether key is currently brewing.
func (b *BrewingStage) ContainsKey(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.set[key]
	return ok
}

// Len reports how many keys are currently brewing, across both
// categories. Intended for the stats reporter.
func (b *BrewingStage) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.set)
}

// TrayStage holds completed tickets awaiting pickup or reclamation.
// Unlike waiting, consumers need to scan and remove by predicate (a
// collection check against a customer's outstanding keys, or a
// reclamation scan for an orphaned match), not just dequeue the head.
type TrayStage struct {
	mu    sync.Mutex
	items []*Ticket
}

// NewTrayStage returns an empty tray.
func NewTrayStage() *TrayStage {
	return &TrayStage{}
}

// Enqueue appends a completed ticket to the tray.
func (t *TrayStage) Enqueue(ticket *Ticket) {
	t.mu.Lock()
	t.items = append(t.items, ticket)
	t.mu.Unlock()
}

// ContainsKey reports whether key is currently sitting in tray.
func (t *TrayStage) ContainsKey(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ticket := range t.items {
		if ticket.Key == key {
			return true
		}
	}
	return false
}

// RemoveAllByOwner removes and returns every ticket owned by owner.
// Used by collection, which has already verified every owned item is
// present and must remove them atomically with respect to this stage.
func (t *TrayStage) RemoveAllByOwner(owner int) []*Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []*Ticket
	remaining := t.items[:0:0]
	for _, ticket := range t.items {
		if ticket.Owner == owner {
			removed = append(removed, ticket)
		} else {
			remaining = append(remaining, ticket)
		}
	}
	t.items = remaining
	return removed
}

// RemoveFirstMatch removes and returns the first ticket for which
// match returns true, or nil if none match. Used by reclamation to
// find an orphaned tray ticket of a given category.
func (t *TrayStage) RemoveFirstMatch(match func(*Ticket) bool) *Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, ticket := range t.items {
		if match(ticket) {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return ticket
		}
	}
	return nil
}

// Len reports the current tray depth. Intended for the stats
// reporter.
func (t *TrayStage) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// CapacityCounters tracks, per category, how many items are currently
// brewing. TryReserve performs the check-and-increment atomically so
// that two scheduler dispatch decisions can never both believe they
// claimed the same slot.
type CapacityCounters struct {
	ceiling int32
	tea     atomic.Int32
	coffee  atomic.Int32
}

// NewCapacityCounters returns counters that admit at most ceiling
// concurrent brews per category.
func NewCapacityCounters(ceiling int) *CapacityCounters {
	return &CapacityCounters{ceiling: int32(ceiling)}
}

func (c *CapacityCounters) counter(cat Category) *atomic.Int32 {
	if cat == Tea {
		return &c.tea
	}
	return &c.coffee
}

// TryReserve attempts to claim one slot for cat. Returns false without
// side effects if the category is already at its ceiling.
func (c *CapacityCounters) TryReserve(cat Category) bool {
	counter := c.counter(cat)
	for {
		current := counter.Load()
		if current >= c.ceiling {
			return false
		}
		if counter.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release frees one previously reserved slot for cat. Called via
// defer around the entire brew job so that any fault during brewing
// still restores capacity.
func (c *CapacityCounters) Release(cat Category) {
	c.counter(cat).Add(-1)
}

// Count returns the current number of reserved slots for cat.
// Intended for the stats reporter and tests.
func (c *CapacityCounters) Count(cat Category) int {
	return int(c.counter(cat).Load())
}

// Ceiling returns the maximum number of concurrent brews permitted per
// category.
func (c *CapacityCounters) Ceiling() int {
	return int(c.ceiling)
}
