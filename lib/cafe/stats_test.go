// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/barista-cafe/cafe/lib/clock"
	"github.com/barista-cafe/cafe/lib/testutil"
)

// syncBuffer wraps a bytes.Buffer with a mutex so the reporter
// goroutine's writes and the test's reads never race.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestStatsReporterRendersSnapshot(t *testing.T) {
	waiting := NewWaitingStage()
	brewing := NewBrewingStage()
	tray := NewTrayStage()
	capacity := NewCapacityCounters(2)
	registry := NewRegistry()

	waiting.Enqueue(&Ticket{Key: "w1"})
	tray.Enqueue(&Ticket{Key: "t1"})
	capacity.TryReserve(Tea)
	registry.Register(&Session{Owner: 1})
	registry.MarkIdle(1, "ada")

	fakeClock := clock.Fake(time.Unix(0, 0))
	out := &syncBuffer{}
	reporter := NewStatsReporter(waiting, brewing, tray, capacity, registry, fakeClock, time.Second, out)

	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		reporter.Run(stop)
		close(done)
	}()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "connected: 1") {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for a rendered snapshot; got %q", out.String())
		}
		time.Sleep(time.Millisecond)
	}

	close(stop)
	testutil.RequireClosed(t, done, 2*time.Second, "reporter should stop once its done channel fires")

	rendered := out.String()
	if !strings.Contains(rendered, "idle: 1") {
		t.Errorf("rendered output missing idle count: %q", rendered)
	}
	if !strings.Contains(rendered, "waiting:   1") {
		t.Errorf("rendered output missing waiting depth: %q", rendered)
	}
	if !strings.Contains(rendered, "tray: 1") {
		t.Errorf("rendered output missing tray depth: %q", rendered)
	}
	if !strings.Contains(rendered, "tea=1") {
		t.Errorf("rendered output missing tea brewing count: %q", rendered)
	}
}
