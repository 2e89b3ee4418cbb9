// Package gate turns bouncing button edges into single requests. Everything here is
// lock-free so Edge can be called from a pin interrupt handler.
package gate

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the minimum time between two accepted edges
const DefaultDebounce = 250 * time.Millisecond

// Debouncer accepts an event only if the previous accepted event is at least Interval old
type Debouncer struct {
	interval time.Duration
	// last is the UnixNano of the last accepted event. Zero means none yet
	last atomic.Int64
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Accept reports whether an event at now passes the debounce interval, and records it if so.
// An event before the last accepted one means the wall clock was stepped back, and is accepted
func (d *Debouncer) Accept(now time.Time) bool {
	ts := now.UnixNano()
	for {
		prev := d.last.Load()
		if prev != 0 && ts >= prev && time.Duration(ts-prev) < d.interval {
			return false
		}
		if d.last.CompareAndSwap(prev, ts) {
			return true
		}
	}
}

// Gate raises a pending request for every debounced edge. The request stays pending until taken
type Gate struct {
	debouncer *Debouncer
	pending   atomic.Bool
	accepted  atomic.Uint32
}

func New(debounce time.Duration) *Gate {
	return &Gate{debouncer: NewDebouncer(debounce)}
}

// Edge is called for every raw edge on the input. It returns true if the edge was accepted
func (g *Gate) Edge(now time.Time) bool {
	if !g.debouncer.Accept(now) {
		return false
	}
	g.accepted.Add(1)
	g.pending.Store(true)
	return true
}

// Pending reports whether a request is waiting without consuming it
func (g *Gate) Pending() bool {
	return g.pending.Load()
}

// Take consumes the pending request
func (g *Gate) Take() bool {
	return g.pending.Swap(false)
}

// Clear drops any pending request
func (g *Gate) Clear() {
	g.pending.Store(false)
}

// Accepted is the number of edges accepted since start
func (g *Gate) Accepted() uint32 {
	return g.accepted.Load()
}
