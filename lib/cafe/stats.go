// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/barista-cafe/cafe/lib/clock"
)

// StatsReporter periodically renders a snapshot of the pipeline's
// counters: connected/idle customers, per-stage depths, and
// per-category brewing counts. It runs inside the server process on a
// clock.Ticker rather than as a client polling a status endpoint over
// the network, and only ever reads the pipeline's counters.
type StatsReporter struct {
	waiting  *WaitingStage
	brewing  *BrewingStage
	tray     *TrayStage
	capacity *CapacityCounters
	registry *Registry
	clock    clock.Clock
	interval time.Duration
	out      io.Writer
}

// NewStatsReporter returns a reporter that renders snapshots to out
// every interval.
func NewStatsReporter(waiting *WaitingStage, brewing *BrewingStage, tray *TrayStage, capacity *CapacityCounters, registry *Registry, clk clock.Clock, interval time.Duration, out io.Writer) *StatsReporter {
	return &StatsReporter{
		waiting:  waiting,
		brewing:  brewing,
		tray:     tray,
		capacity: capacity,
		registry: registry,
		clock:    clk,
		interval: interval,
		out:      out,
	}
}

var (
	statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	statsBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Run renders one snapshot every interval until done is closed.
func (r *StatsReporter) Run(done <-chan struct{}) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Fprintln(r.out, r.render())
		case <-done:
			return
		}
	}
}

func (r *StatsReporter) render() string {
	connected, idle := r.registry.Stats()

	lines := []string{
		statsHeaderStyle.Render("cafe status"),
		fmt.Sprintf("connected: %-3d idle: %-3d", connected, idle),
		fmt.Sprintf("waiting:   %-3d tray: %-3d", r.waiting.Len(), r.tray.Len()),
		fmt.Sprintf("brewing:   tea=%d coffee=%d (of %d each)", r.capacity.Count(Tea), r.capacity.Count(Coffee), r.capacity.Ceiling()),
	}
	return statsBoxStyle.Render(strings.Join(lines, "\n"))
}
