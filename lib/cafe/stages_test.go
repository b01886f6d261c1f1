// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/barista-cafe/cafe/lib/testutil"
)

func TestWaitingStageFIFO(t *testing.T) {
	w := NewWaitingStage()
	first := &Ticket{Key: "a"}
	second := &Ticket{Key: "b"}
	w.Enqueue(first)
	w.Enqueue(second)

	ctx := context.Background()
	got, ok := w.Dequeue(ctx)
	if !ok || got != first {
		t.Fatalf("first dequeue = %+v, ok=%v, want %+v", got, ok, first)
	}
	got, ok = w.Dequeue(ctx)
	if !ok || got != second {
		t.Fatalf("second dequeue = %+v, ok=%v, want %+v", got, ok, second)
	}
}

func TestWaitingStageDequeueBlocksUntilEnqueue(t *testing.T) {
	w := NewWaitingStage()
	ctx := context.Background()

	results := make(chan *Ticket, 1)
	go func() {
		ticket, ok := w.Dequeue(ctx)
		if ok {
			results <- ticket
		}
	}()

	ticket := &Ticket{Key: "late"}
	time.Sleep(10 * time.Millisecond)
	w.Enqueue(ticket)

	got := testutil.RequireReceive(t, results, 2*time.Second, "waiting for dequeue to unblock")
	if got != ticket {
		t.Errorf("dequeued %+v, want %+v", got, ticket)
	}
}

func TestWaitingStageDequeueRespectsContextCancellation(t *testing.T) {
	w := NewWaitingStage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := w.Dequeue(ctx)
	if ok {
		t.Error("expected ok=false after context cancellation")
	}
}

func TestBrewingStageMembership(t *testing.T) {
	b := NewBrewingStage()
	if b.ContainsKey("x") {
		t.Fatal("empty stage should not contain key")
	}

	b.Insert("x")
	if !b.ContainsKey("x") {
		t.Fatal("expected key to be present after Insert")
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}

	b.Remove("x")
	if b.ContainsKey("x") {
		t.Fatal("expected key to be absent after Remove")
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestTrayStageRemoveAllByOwner(t *testing.T) {
	tray := NewTrayStage()
	ownerA1 := &Ticket{Owner: 1, Key: "a1"}
	ownerA2 := &Ticket{Owner: 1, Key: "a2"}
	ownerB := &Ticket{Owner: 2, Key: "b"}
	tray.Enqueue(ownerA1)
	tray.Enqueue(ownerB)
	tray.Enqueue(ownerA2)

	removed := tray.RemoveAllByOwner(1)
	if len(removed) != 2 {
		t.Fatalf("removed %d tickets, want 2", len(removed))
	}
	if tray.Len() != 1 {
		t.Fatalf("tray.Len() = %d, want 1", tray.Len())
	}
	if !tray.ContainsKey("b") {
		t.Error("owner 2's ticket should remain")
	}
	if tray.ContainsKey("a1") || tray.ContainsKey("a2") {
		t.Error("owner 1's tickets should have been removed")
	}
}

func TestTrayStageRemoveFirstMatch(t *testing.T) {
	tray := NewTrayStage()
	tea := &Ticket{Owner: 1, Item: Item{Category: Tea}, Key: "tea-1"}
	coffee := &Ticket{Owner: 2, Item: Item{Category: Coffee}, Key: "coffee-1"}
	tray.Enqueue(tea)
	tray.Enqueue(coffee)

	match := tray.RemoveFirstMatch(func(ticket *Ticket) bool {
		return ticket.Item.Category == Coffee
	})
	if match != coffee {
		t.Fatalf("RemoveFirstMatch returned %+v, want %+v", match, coffee)
	}
	if tray.ContainsKey("coffee-1") {
		t.Error("matched ticket should have been removed from tray")
	}
	if !tray.ContainsKey("tea-1") {
		t.Error("non-matching ticket should remain")
	}

	if got := tray.RemoveFirstMatch(func(*Ticket) bool { return true }); got != tea {
		t.Fatalf("second RemoveFirstMatch = %+v, want %+v", got, tea)
	}
	if got := tray.RemoveFirstMatch(func(*Ticket) bool { return true }); got != nil {
		t.Fatalf("RemoveFirstMatch on empty tray = %+v, want nil", got)
	}
}

func TestCapacityCountersTryReserveRespectsCeiling(t *testing.T) {
	counters := NewCapacityCounters(2)

	if !counters.TryReserve(Tea) {
		t.Fatal("first reservation should succeed")
	}
	if !counters.TryReserve(Tea) {
		t.Fatal("second reservation should succeed")
	}
	if counters.TryReserve(Tea) {
		t.Fatal("third reservation should fail at ceiling")
	}
	if counters.Count(Tea) != 2 {
		t.Fatalf("Count(Tea) = %d, want 2", counters.Count(Tea))
	}

	// Categories are tracked independently.
	if !counters.TryReserve(Coffee) {
		t.Fatal("coffee reservation should succeed independent of tea")
	}

	counters.Release(Tea)
	if counters.Count(Tea) != 1 {
		t.Fatalf("Count(Tea) after release = %d, want 1", counters.Count(Tea))
	}
	if !counters.TryReserve(Tea) {
		t.Fatal("reservation should succeed again after release")
	}
}

func TestCapacityCountersConcurrentReservationsNeverExceedCeiling(t *testing.T) {
	counters := NewCapacityCounters(3)

	var wg sync.WaitGroup
	var granted sync.Map
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if counters.TryReserve(Tea) {
				granted.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	granted.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count != 3 {
		t.Fatalf("granted %d reservations concurrently, want exactly 3", count)
	}
	if counters.Count(Tea) != 3 {
		t.Fatalf("Count(Tea) = %d, want 3", counters.Count(Tea))
	}
}
