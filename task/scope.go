package task

import (
	"github.com/ngcore/asynccore/parking"
	"github.com/ngcore/asynccore/spin"
)

// AsyncScope is a drop-safe, unbounded container that spawns senders and
// tracks how many are still running. Unlike StaticScope, it never parks a
// spawner: Spawn always starts immediately. Cleanup returns a sender that
// completes once every spawned sender has completed, which is the
// mechanism every subsystem uses to guarantee it has stopped issuing work
// before it tears down whatever that work depended on.
type AsyncScope struct {
	lock    spin.Lock
	pending int
	waiters parking.Lot[struct{}]
}

// NewAsyncScope returns an empty, ready to use AsyncScope.
func NewAsyncScope() *AsyncScope {
	return &AsyncScope{}
}

// Spawn starts sender immediately, tracking its completion. The sender's
// own value/error/done outcome is discarded — AsyncScope only observes
// that it settled, not how.
func Spawn[T any](scope *AsyncScope, sender Sender[T]) {
	scope.lock.Lock()
	scope.pending++
	scope.lock.Unlock()

	sender.Start(FuncReceiver[T]{
		Value: func(T) { scope.complete() },
		Error: func(error) { scope.complete() },
		Done:  func() { scope.complete() },
	})
}

func (s *AsyncScope) complete() {
	s.lock.Lock()
	s.pending--
	if s.pending > 0 {
		s.lock.Unlock()
		return
	}
	// Release the lock before waking: WakeAll may be invoked from within
	// a spawned sender's own completion, and a waiter's continuation may
	// immediately try to Spawn again, re-entering this scope.
	s.waiters.WakeAll(&s.lock, struct{}{})
}

// Cleanup returns a sender that resolves with a value once pending drops
// to zero. If it is already zero, it resolves synchronously.
func (s *AsyncScope) Cleanup() Sender[struct{}] {
	return SenderFunc[struct{}](func(r Receiver[struct{}]) {
		s.lock.Lock()
		if s.pending == 0 {
			s.lock.Unlock()
			r.SetValue(struct{}{})
			return
		}
		s.waiters.Park(parking.NewOp[struct{}](
			func(struct{}) { r.SetValue(struct{}{}) },
			func() { r.SetDone() },
		))
		s.lock.Unlock()
	})
}

// Pending reports the number of senders spawned but not yet settled. It
// is a racy hint unless the caller otherwise knows no further Spawn calls
// are in flight.
func (s *AsyncScope) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pending
}
