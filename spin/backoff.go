// Package spin provides the low-level spin-wait, spinlock, and multi-lock
// primitives the rest of asynccore builds its parking lot and pool
// synchronization on top of.
package spin

import "runtime"

// yieldThreshold is the number of busy-spin iterations performed before
// falling back to a cooperative goroutine yield. Mirrors the original
// engine's SpinWait, which pauses the CPU for a bounded number of rounds
// before calling std::this_thread::yield.
const yieldThreshold = 20

// Wait implements a bounded spin-then-yield backoff strategy: a short run
// of busy-spins (cheap, keeps cache lines hot) followed by a cooperative
// scheduler yield once contention looks sustained. It carries no state
// besides an internal counter, so the zero value is ready to use.
type Wait struct {
	counter int
}

// Spin performs one backoff step. Call it in a loop around a CAS retry.
func (w *Wait) Spin() {
	if w.counter < yieldThreshold {
		procyield()
	} else {
		runtime.Gosched()
	}
	w.counter++
}

// Reset zeroes the internal counter, for reuse across independent waits.
func (w *Wait) Reset() {
	w.counter = 0
}

// procyield performs a handful of no-op spins. Go exposes no portable CPU
// pause intrinsic, so a short empty loop stands in for it: cheap, keeps
// the core busy without yielding the OS thread, same intent as the
// original's cpu_pause.
func procyield() {
	for i := 0; i < 8; i++ {
	}
}
