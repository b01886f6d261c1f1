// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

// AttemptReclaim scans tray for a ticket of category whose owner is no
// longer active, and if found, reassigns it to newOwner. keyFor builds
// the new ticket's pipeline key from the reclaimed item (the session's
// own per-owner sequence generator, so the caller controls key shape).
//
// The new ticket carries the orphaned ticket's quantity, not the
// quantity the new owner asked for — reclamation fulfills whatever was
// sitting abandoned in tray. The incoming item's quantity only
// selected which category to look for.
//
// Returns the reassigned ticket and true if a match was found; the
// incoming item must not be enqueued into waiting in that case — it
// has already been fulfilled.
func AttemptReclaim(tray *TrayStage, registry *Registry, category Category, newOwner int, ref SessionRef, keyFor func(Item) string) (*Ticket, bool) {
	orphan := tray.RemoveFirstMatch(func(t *Ticket) bool {
		return t.Item.Category == category && !registry.IsActive(t.Owner)
	})
	if orphan == nil {
		return nil, false
	}

	reassigned := &Ticket{
		Owner:   newOwner,
		Item:    orphan.Item,
		Handler: ref,
	}
	reassigned.Key = keyFor(reassigned.Item)
	tray.Enqueue(reassigned)
	return reassigned, true
}
