// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

// Package cafe implements the concurrency engine behind a small
// beverage-fulfillment server: a three-stage order pipeline (waiting →
// brewing → tray), a capacity-aware scheduler, per-session protocol
// handling, abandoned-order reclamation, and asynchronous ready
// notifications fanned out to connected sessions.
//
// [Server] wires the pieces together: a bounded connection-accept
// loop, a [Scheduler] that is the sole consumer of the waiting queue, a
// bounded pool of brew workers, and a [Registry] mapping opaque
// [SessionRef] handles to live [Session] values so that a ticket never
// holds a direct pointer back to the handler that created it.
//
// Production code wires clock.Real(); tests wire clock.Fake() to make
// brew durations and the scheduler's requeue sleep deterministic.
package cafe
