// Package parking implements the intrusive parking-lot queue that the
// worker pool, blocking pool, event queue, and static scope are all built
// on top of: a FIFO queue of suspended operations, each carrying a
// type-erased wake and cancel callback, mutated only under a caller-held
// lock and woken only after that lock is released.
package parking

import "github.com/ngcore/asynccore/corerr"

// Op is one suspended operation parked in a [Lot]. It is the Go analogue
// of the original engine's OpParkingLot::OpBase: a node in an intrusive
// singly-linked queue carrying type-erased wake/cancel callbacks instead
// of C++ function pointers bound to a vtable slot.
//
// An Op must never be parked in more than one Lot at a time, and its
// owner is guaranteed exactly one call to Wake or Cancel before the Op
// may be reused or discarded. Op is not safe for concurrent use from
// multiple goroutines; all mutation happens under the owning Lot's lock.
type Op[Args any] struct {
	next   *Op[Args]
	wake   func(Args)
	cancel func()
}

// NewOp constructs an Op with the given wake callback. cancel may be nil,
// in which case Cancel is a no-op — matching the original's
// detail::HasCancel concept, where cancellation is optional per operation
// type.
func NewOp[Args any](wake func(Args), cancel func()) *Op[Args] {
	if wake == nil {
		panic(&corerr.InvariantError{
			Invariant: "parking.NewOp requires a non-nil wake callback",
		})
	}
	return &Op[Args]{wake: wake, cancel: cancel}
}

// Wake invokes the op's wake callback. Callers must only invoke this
// after popping the Op from its Lot and releasing the lock — see [Lot].
func (o *Op[Args]) Wake(args Args) {
	o.wake(args)
}

// Cancel invokes the op's cancel callback, if any.
func (o *Op[Args]) Cancel() {
	if o.cancel != nil {
		o.cancel()
	}
}
