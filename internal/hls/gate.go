package hls

import (
	"sync"

	"reodash/internal/logging"
	"reodash/internal/metrics"
)

// Gate is the bounded admission counter for transcode jobs. It never blocks:
// a full gate is reported to the caller as a normal "queue full" condition,
// not retried internally.
//
// TryAdmit only checks capacity; callers that decide to proceed must call
// Acquire, and must arrange for exactly one Release when the job's process
// has fully exited or been cleaned up, on every path including errors.
type Gate struct {
	mu      sync.Mutex
	current int
	max     int
}

// GateSnapshot is a point-in-time view of gate occupancy.
type GateSnapshot struct {
	Active    int `json:"active_transcodes"`
	Max       int `json:"max_concurrent"`
	Available int `json:"available_slots"`
}

// NewGate returns a gate admitting at most max concurrent jobs.
func NewGate(max int) *Gate {
	metrics.GateSlotsMax.Set(float64(max))
	return &Gate{max: max}
}

// TryAdmit reports whether a slot is available. It does not reserve one.
func (g *Gate) TryAdmit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current < g.max
}

// Acquire takes a slot.
func (g *Gate) Acquire() {
	g.mu.Lock()
	g.current++
	metrics.GateSlotsInUse.Set(float64(g.current))
	g.mu.Unlock()
}

// Release returns a slot. A release without a matching acquire indicates a
// double-finalized job and is logged rather than allowed to drive the
// counter negative.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == 0 {
		logging.Error("gate release without matching acquire")
		return
	}
	g.current--
	metrics.GateSlotsInUse.Set(float64(g.current))
}

// Snapshot returns the current occupancy for status reporting.
func (g *Gate) Snapshot() GateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GateSnapshot{
		Active:    g.current,
		Max:       g.max,
		Available: g.max - g.current,
	}
}
