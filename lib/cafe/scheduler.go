// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"log/slog"
	"time"

	"github.com/barista-cafe/cafe/lib/clock"
)

// Scheduler is the sole consumer of the waiting stage and the sole
// producer of brew jobs. Its dispatch loop also owns the capacity
// check-and-reserve: deciding whether a category has a free slot and
// claiming it happen as one atomic step here, not split across the
// scheduler's decision and a later increment inside the worker, which
// would let two dispatched jobs both believe they'd claimed the same
// just-freed slot.
type Scheduler struct {
	waiting         *WaitingStage
	capacity        *CapacityCounters
	jobs            chan<- Job
	clock           clock.Clock
	requeueInterval time.Duration
	logger          *slog.Logger
}

// Job is a brew assignment dispatched from the scheduler to the
// worker pool.
type Job struct {
	Ticket   *Ticket
	Category Category
}

// NewScheduler returns a scheduler that dispatches onto jobs.
func NewScheduler(waiting *WaitingStage, capacity *CapacityCounters, jobs chan<- Job, clk clock.Clock, requeueInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		waiting:         waiting,
		capacity:        capacity,
		jobs:            jobs,
		clock:           clk,
		requeueInterval: requeueInterval,
		logger:          logger,
	}
}

// Run executes the dispatch loop until ctx is cancelled.
//
// Algorithm: blocking-dequeue the head of waiting; if its category has
// a free capacity slot, claim it and dispatch a brew job; otherwise
// requeue the ticket at the tail and sleep the requeue interval before
// trying again. This round-robins across categories once the head
// category saturates, while still preserving FIFO within a saturated
// category — the requeued head returns to the tail, behind every other
// ticket of the same category already queued.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		ticket, ok := s.waiting.Dequeue(ctx)
		if !ok {
			return
		}

		if s.capacity.TryReserve(ticket.Item.Category) {
			select {
			case s.jobs <- Job{Ticket: ticket, Category: ticket.Item.Category}:
			case <-ctx.Done():
				s.capacity.Release(ticket.Item.Category)
				return
			}
			continue
		}

		s.waiting.Enqueue(ticket)
		s.clock.Sleep(s.requeueInterval)
	}
}
