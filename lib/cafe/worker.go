// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fxsml/gopipe/channel"

	"github.com/barista-cafe/cafe/lib/clock"
)

// WorkerPool executes brew jobs dispatched by the [Scheduler]. A fixed
// number of long-lived goroutines read from a shared jobs channel;
// each simulates a brew and moves the ticket from brewing to tray.
// Every worker owns its own completion channel rather than calling the
// registry directly; [channel.Merge] fans all of them into one stream
// consumed by a single notifier goroutine, so ready notifications are
// dispatched off a single path regardless of which worker produced
// them.
type WorkerPool struct {
	size     int
	jobs     <-chan Job
	brewing  *BrewingStage
	tray     *TrayStage
	capacity *CapacityCounters
	registry *Registry
	clock    clock.Clock
	logger   *slog.Logger

	outputs []chan *Ticket
}

// NewWorkerPool returns a pool of size goroutines, none of which are
// started until Run is called.
func NewWorkerPool(size int, jobs <-chan Job, brewing *BrewingStage, tray *TrayStage, capacity *CapacityCounters, registry *Registry, clk clock.Clock, logger *slog.Logger) *WorkerPool {
	outputs := make([]chan *Ticket, size)
	for i := range outputs {
		outputs[i] = make(chan *Ticket)
	}
	return &WorkerPool{
		size:     size,
		jobs:     jobs,
		brewing:  brewing,
		tray:     tray,
		capacity: capacity,
		registry: registry,
		clock:    clk,
		logger:   logger,
		outputs:  outputs,
	}
}

// Run starts the pool's workers and its notification fan-in, and
// blocks until ctx is cancelled and every in-flight job has returned.
func (p *WorkerPool) Run(ctx context.Context) {
	readers := make([]<-chan *Ticket, len(p.outputs))
	for i, out := range p.outputs {
		readers[i] = out
	}
	merged := channel.Merge(readers...)

	notifyDone := make(chan struct{})
	go func() {
		defer close(notifyDone)
		for ticket := range merged {
			p.notify(ticket)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go func(i int) {
			defer wg.Done()
			defer close(p.outputs[i])
			p.runWorker(ctx, p.outputs[i])
		}(i)
	}
	wg.Wait()
	<-notifyDone
}

func (p *WorkerPool) runWorker(ctx context.Context, out chan<- *Ticket) {
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.brew(ctx, job, out)
		case <-ctx.Done():
			return
		}
	}
}

// brew executes one job end to end: mark brewing, sleep out the brew
// duration, then move the ticket to the tray. The tray enqueue happens
// before the brewing remove so that an external observer never sees
// the ticket in neither container; capacity is released via defer so
// a panic mid-brew still restores the slot. If ctx is cancelled during
// the brew, the ticket is abandoned: it leaves brewing and never
// reaches the tray.
func (p *WorkerPool) brew(ctx context.Context, job Job, out chan<- *Ticket) {
	defer p.capacity.Release(job.Category)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("brew fault", "ticket", job.Ticket.Key, "panic", r)
		}
	}()

	p.brewing.Insert(job.Ticket.Key)
	select {
	case <-p.clock.After(job.Category.BrewDuration()):
	case <-ctx.Done():
		p.brewing.Remove(job.Ticket.Key)
		return
	}

	p.tray.Enqueue(job.Ticket)
	p.brewing.Remove(job.Ticket.Key)

	select {
	case out <- job.Ticket:
	case <-ctx.Done():
	}
}

func (p *WorkerPool) notify(ticket *Ticket) {
	session, ok := p.registry.Lookup(ticket.Handler)
	if !ok {
		p.logger.Debug("notification dropped: session no longer registered", "owner", ticket.Owner, "key", ticket.Key)
		return
	}
	session.Notify(ReadyNotification(ticket.Item))
}
