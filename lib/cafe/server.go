// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/barista-cafe/cafe/lib/clock"
)

// Server wires the pipeline stages, scheduler, worker pool, and
// acceptor together. Construct one with NewServer and call Run with a
// context that is cancelled on shutdown.
type Server struct {
	SessionPoolSize int

	waiting  *WaitingStage
	brewing  *BrewingStage
	tray     *TrayStage
	capacity *CapacityCounters
	registry *Registry

	scheduler *Scheduler
	workers   *WorkerPool

	clock  clock.Clock
	logger *slog.Logger
}

// Options configures a Server. Zero-value fields are invalid; callers
// typically derive these from lib/config's defaults.
type Options struct {
	SessionPoolSize          int
	WorkerPoolSize           int
	CapacityCeiling          int
	SchedulerRequeueInterval time.Duration
	Clock                    clock.Clock
	Logger                   *slog.Logger
}

// NewServer constructs a server with its own pipeline state. The
// worker pool and scheduler are wired together through an internal
// jobs channel sized to the worker pool, so a scheduler dispatch never
// blocks on a full pool for longer than it takes a worker to pick up
// its previous job.
func NewServer(opts Options) *Server {
	waiting := NewWaitingStage()
	brewing := NewBrewingStage()
	tray := NewTrayStage()
	capacity := NewCapacityCounters(opts.CapacityCeiling)
	registry := NewRegistry()

	jobs := make(chan Job, opts.WorkerPoolSize)

	workers := NewWorkerPool(opts.WorkerPoolSize, jobs, brewing, tray, capacity, registry, opts.Clock, opts.Logger)
	scheduler := NewScheduler(waiting, capacity, jobs, opts.Clock, opts.SchedulerRequeueInterval, opts.Logger)

	return &Server{
		SessionPoolSize: opts.SessionPoolSize,
		waiting:         waiting,
		brewing:         brewing,
		tray:            tray,
		capacity:        capacity,
		registry:        registry,
		scheduler:       scheduler,
		workers:         workers,
		clock:           opts.Clock,
		logger:          opts.Logger,
	}
}

// StatsReporter returns a reporter bound to this server's live
// counters.
func (s *Server) StatsReporter(interval time.Duration, out io.Writer) *StatsReporter {
	return NewStatsReporter(s.waiting, s.brewing, s.tray, s.capacity, s.registry, s.clock, interval, out)
}

// Run accepts connections on listener and drives the scheduler and
// worker pool until ctx is cancelled. It blocks until every
// in-progress session, the scheduler, and the worker pool have all
// returned.
//
// Cancellation propagates to the acceptor's Accept unblock (by
// closing listener), to the scheduler's loop boundary, and to worker
// pool drain via sync.WaitGroup.
func (s *Server) Run(ctx context.Context, listener net.Listener) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.scheduler.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.workers.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		_ = listener.Close()
	}()

	sessionSlots := make(chan struct{}, s.SessionPoolSize)

	var sessionsWG sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Debug("accept failed", "error", err)
			continue
		}

		select {
		case sessionSlots <- struct{}{}:
		case <-ctx.Done():
			_ = conn.Close()
			continue
		}

		sessionsWG.Add(1)
		go func() {
			defer sessionsWG.Done()
			defer func() { <-sessionSlots }()

			session := NewSession(conn, s.registry, s.waiting, s.brewing, s.tray, s.clock, s.logger)
			session.Run(ctx)
		}()
	}

	sessionsWG.Wait()
	wg.Wait()
	return nil
}
