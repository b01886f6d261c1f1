// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

// Frame is the single envelope type carried over the wire in both
// directions. Kind tells a decoder which of the other fields is
// populated, a tagged union in place of a hierarchy of message types.
type Frame struct {
	Kind     string    `cbor:"kind"`
	Text     string    `cbor:"text,omitempty"`
	Items    []Item    `cbor:"items,omitempty"`
	Customer *Customer `cbor:"customer,omitempty"`
}

// Frame kinds.
const (
	KindText     = "text"
	KindCustomer = "customer"
	KindItems    = "items"
)

// TextFrame builds a Frame carrying a bare text token or status blob.
func TextFrame(text string) Frame {
	return Frame{Kind: KindText, Text: text}
}

// ItemsFrame builds a Frame carrying an item list (a NEW_ORDER payload
// or the initial order list).
func ItemsFrame(items []Item) Frame {
	return Frame{Kind: KindItems, Items: items}
}

// Client request tokens.
const (
	RequestOrderStatus = "ORDER_STATUS"
	RequestCollect     = "COLLECT_ORDER"
	RequestNewOrder    = "NEW_ORDER"
	RequestTerminate   = "TERMINATE"
)

// Server response tokens.
const (
	ResponseConnected          = "CONNECTED"
	ResponseOrderStatusReady   = "ORDER_STATUS_CONFIRMED"
	ResponseCollectReady       = "COLLECT_ORDER_READY"
	ResponseCollectNotReady    = "COLLECT_ORDER_NOT_READY"
	ResponseNoOrderFound       = "NO_ORDER_FOUND"
	ResponseNewOrderReady      = "NEW_ORDER_READY"
	ResponseNewOrderConfirmed  = "NEW_ORDER_CONFIRMED"
	ResponseTerminateConfirmed = "TERMINATE_CONFIRMED"
)

// NotificationPrefix marks a server-originated message on an
// otherwise client-driven channel. A client displays anything with
// this prefix without consuming a pending response slot.
const NotificationPrefix = "SERVER: "

// ReadyNotification formats the ready-for-pickup notification for a
// single item.
func ReadyNotification(item Item) string {
	return NotificationPrefix + "Your " + item.String() + " is ready for pickup!"
}

// ReclaimedNotification is sent once, regardless of how many items a
// reclamation swept up, when a newly connecting or newly ordering
// customer's order turns out to already be sitting in tray under an
// orphaned ticket.
const ReclaimedNotification = NotificationPrefix + "That was fast! We have your order complete :)"
