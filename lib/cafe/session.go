// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/barista-cafe/cafe/lib/clock"
	"github.com/barista-cafe/cafe/lib/codec"
)

// outstandingEntry is one item a session has ordered. Entries stay in
// the session's list after the item is collected; the list is never
// pruned.
type outstandingEntry struct {
	Key  string
	Item Item
}

// Session owns one customer connection: it translates the framed wire
// protocol into pipeline operations and is the single writer of its
// outbound stream. Both its own request/response logic and the worker
// pool's ready notifications send Frame values through out; nothing
// outside this type ever calls s.enc.Encode directly, which is what
// keeps two goroutines from ever interleaving writes on the same
// connection.
type Session struct {
	Owner int
	Name  string

	// connectionID identifies this connection in logs independent of
	// Owner, which a customer can reuse across reconnects and which
	// collides across the handshake gap where two sessions briefly
	// share an owner during last-connect-wins replacement.
	connectionID uuid.UUID

	ref      SessionRef
	registry *Registry
	waiting  *WaitingStage
	brewing  *BrewingStage
	tray     *TrayStage
	clock    clock.Clock
	logger   *slog.Logger

	conn net.Conn
	enc  *codec.Encoder
	dec  *codec.Decoder

	out  chan Frame
	done chan struct{}
	once sync.Once

	// idle, outstanding, and seq are mutated only by this session's
	// own request loop goroutine; they are never read or written from
	// the worker pool or any other session.
	idle        bool
	outstanding []outstandingEntry
	seq         uint64
}

// NewSession constructs a session around an already-accepted
// connection. Call Run to drive it; Run blocks until the session
// ends.
func NewSession(conn net.Conn, registry *Registry, waiting *WaitingStage, brewing *BrewingStage, tray *TrayStage, clk clock.Clock, logger *slog.Logger) *Session {
	return &Session{
		connectionID: uuid.New(),
		registry:     registry,
		waiting:      waiting,
		brewing:      brewing,
		tray:         tray,
		clock:        clk,
		logger:       logger,
		conn:         conn,
		enc:          codec.NewEncoder(conn),
		dec:          codec.NewDecoder(conn),
		out:          make(chan Frame, 32),
		done:         make(chan struct{}),
	}
}

// Run drives the session to completion: handshake, then the
// request/response loop, until TERMINATE, a transport fault, or ctx
// cancellation. It always cleans up the session's registry entry and
// connection before returning; frames already queued for the client
// (such as TERMINATE_CONFIRMED) are written before the connection
// closes.
func (s *Session) Run(ctx context.Context) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx)
	}()
	defer func() {
		s.closeDone()
		<-writerDone
		for len(s.out) > 0 {
			if err := s.enc.Encode(<-s.out); err != nil {
				break
			}
		}
		s.cleanup()
	}()

	// Closing the connection on cancellation unblocks a pending Decode.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-s.done:
		}
	}()

	if err := s.handshake(ctx); err != nil {
		s.logger.Debug("handshake failed", "connection", s.connectionID, "error", err)
		return
	}

	s.requestLoop(ctx)
}

func (s *Session) cleanup() {
	s.closeDone()
	s.registry.Unregister(s.ref, s.Owner)
	_ = s.conn.Close()
}

func (s *Session) closeDone() {
	s.once.Do(func() { close(s.done) })
}

// writeLoop is the session's single writer: it owns the encoder and
// drains both response frames (sent by this session's own request
// loop) and notification frames (sent by the worker pool via
// [Session.Notify]) from the same channel, in send order.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case frame := <-s.out:
			if err := s.enc.Encode(frame); err != nil {
				s.logger.Debug("transport fault writing frame", "connection", s.connectionID, "owner", s.Owner, "error", err)
				s.closeDone()
				return
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// send enqueues a frame for the write loop. It never blocks past the
// session's lifetime: if the session has already closed, the frame is
// dropped.
func (s *Session) send(f Frame) {
	select {
	case s.out <- f:
	case <-s.done:
	}
}

// Notify delivers an asynchronous "SERVER: " message. Called by the
// worker pool through a [Registry] lookup, never directly from the
// session's own goroutine. Silently dropped if the session has closed.
func (s *Session) Notify(text string) {
	s.send(TextFrame(text))
}

func (s *Session) handshake(ctx context.Context) error {
	var frame Frame
	if err := s.dec.Decode(&frame); err != nil {
		return err
	}
	if frame.Kind != KindCustomer || frame.Customer == nil {
		return fmt.Errorf("cafe: expected customer handshake, got kind %q", frame.Kind)
	}

	s.Owner = frame.Customer.ID
	s.Name = frame.Customer.Name
	s.ref = s.registry.Register(s)

	reclaimed := s.ingestItems(frame.Customer.Items)

	s.send(TextFrame(ResponseConnected))

	if reclaimed {
		s.clock.Sleep(100 * time.Millisecond)
		s.send(TextFrame(ReclaimedNotification))
	}

	return nil
}

func (s *Session) requestLoop(ctx context.Context) {
	for {
		var frame Frame
		if err := s.dec.Decode(&frame); err != nil {
			if err != io.EOF {
				s.logger.Debug("transport fault reading frame", "connection", s.connectionID, "owner", s.Owner, "error", err)
			}
			return
		}

		if frame.Kind != KindText {
			s.logger.Warn("protocol fault: expected text request", "connection", s.connectionID, "owner", s.Owner, "kind", frame.Kind)
			return
		}

		switch frame.Text {
		case RequestOrderStatus:
			s.handleOrderStatus()
		case RequestCollect:
			s.handleCollect()
		case RequestNewOrder:
			if !s.handleNewOrder() {
				return
			}
		case RequestTerminate:
			s.send(TextFrame(ResponseTerminateConfirmed))
			return
		default:
			s.logger.Warn("unknown request token ignored", "connection", s.connectionID, "owner", s.Owner, "token", frame.Text)
		}
	}
}

func (s *Session) handleOrderStatus() {
	s.send(TextFrame(ResponseOrderStatusReady))

	if s.idle {
		s.send(TextFrame("You have no pending orders."))
		return
	}

	var blob strings.Builder
	for _, entry := range s.outstanding {
		fmt.Fprintf(&blob, "%s: %s\n", entry.Item, s.stageOf(entry.Key))
	}
	s.send(TextFrame(blob.String()))
}

// stageOf reports the human-readable stage of an outstanding item.
// Tray and brewing are checked directly; anything not found in either
// is presumed still waiting rather than reported as a tracking error,
// since a dropped-due-to-fault ticket is the only way an outstanding
// item could be in none of the three stages, and that path already
// logs at Error when it happens.
func (s *Session) stageOf(key string) string {
	if s.tray.ContainsKey(key) {
		return "READY"
	}
	if s.brewing.ContainsKey(key) {
		return "BREWING"
	}
	return "WAITING"
}

func (s *Session) handleCollect() {
	if s.idle || len(s.outstanding) == 0 {
		s.send(TextFrame(ResponseNoOrderFound))
		return
	}

	for _, entry := range s.outstanding {
		if !s.tray.ContainsKey(entry.Key) {
			s.send(TextFrame(ResponseCollectNotReady))
			return
		}
	}

	s.tray.RemoveAllByOwner(s.Owner)
	s.idle = true
	s.registry.MarkIdle(s.Owner, s.Name)
	s.send(TextFrame(ResponseCollectReady))
}

// handleNewOrder reads the item list that follows NEW_ORDER_READY and
// reports whether the session should keep looping (false means a
// transport or protocol fault closed it).
func (s *Session) handleNewOrder() bool {
	s.send(TextFrame(ResponseNewOrderReady))

	var itemsFrame Frame
	if err := s.dec.Decode(&itemsFrame); err != nil {
		s.logger.Debug("transport fault reading NEW_ORDER items", "connection", s.connectionID, "owner", s.Owner, "error", err)
		return false
	}
	if itemsFrame.Kind != KindItems {
		s.logger.Warn("protocol fault: expected items payload after NEW_ORDER", "connection", s.connectionID, "owner", s.Owner, "kind", itemsFrame.Kind)
		return false
	}

	reclaimed := s.ingestItems(itemsFrame.Items)

	s.idle = false
	s.registry.MarkConnected(s.Owner)

	s.send(TextFrame(ResponseNewOrderConfirmed))

	if reclaimed {
		s.clock.Sleep(100 * time.Millisecond)
		s.send(TextFrame(ReclaimedNotification))
	}

	return true
}

// ingestItems appends items to the outstanding set, attempting
// reclamation for each before falling back to a fresh waiting-queue
// enqueue. Reports whether at least one item was fulfilled by
// reclamation.
func (s *Session) ingestItems(items []Item) (reclaimedAny bool) {
	for _, item := range items {
		category, err := NormalizeCategory(string(item.Category))
		if err != nil {
			s.logger.Warn("protocol fault: malformed item category ignored", "connection", s.connectionID, "owner", s.Owner, "category", item.Category)
			continue
		}
		item.Category = category

		if ticket, ok := AttemptReclaim(s.tray, s.registry, category, s.Owner, s.ref, s.nextKey); ok {
			s.outstanding = append(s.outstanding, outstandingEntry{Key: ticket.Key, Item: ticket.Item})
			reclaimedAny = true
			continue
		}

		key := s.nextKey(item)
		s.outstanding = append(s.outstanding, outstandingEntry{Key: key, Item: item})
		s.waiting.Enqueue(&Ticket{Owner: s.Owner, Key: key, Item: item, Handler: s.ref})
	}
	return reclaimedAny
}

func (s *Session) nextKey(item Item) string {
	s.seq++
	return NewTicketKey(s.Owner, s.seq, item)
}
