package workerpool

import "sync/atomic"

// Metrics is a point-in-time snapshot of pool activity: how many ops have
// been enqueued and how many have actually run to the point of delivering
// a value to their continuation. The gap between the two is a rough
// measure of queue depth.
type Metrics struct {
	enqueued uint64
	run      uint64
}

// Enqueued returns the total number of ops parked across the pool's
// lifetime.
func (m Metrics) Enqueued() uint64 { return m.enqueued }

// Run returns the total number of ops woken (not cancelled) across the
// pool's lifetime.
func (m Metrics) Run() uint64 { return m.run }

type poolMetrics struct {
	enqueued atomic.Uint64
	run      atomic.Uint64
}

func (m *poolMetrics) recordEnqueue() { m.enqueued.Add(1) }
func (m *poolMetrics) recordRun()     { m.run.Add(1) }
