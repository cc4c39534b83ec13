// Package asyncmutex implements a FIFO-fair async mutex: Lock returns a
// sender that resumes once the mutex is acquired, parking the
// continuation rather than blocking an OS thread when contended. It is
// the Go analogue of the original engine's unifex::async_mutex, built on
// the same parking.Lot/spin.Lock primitives as the rest of this module
// rather than on a borrowed coroutine-mutex implementation, since no
// example in the corpus ships one.
package asyncmutex

import (
	"github.com/ngcore/asynccore/parking"
	"github.com/ngcore/asynccore/spin"
	"github.com/ngcore/asynccore/task"
)

// Mutex is a FIFO async mutex. Its zero value is unlocked and ready to
// use.
type Mutex struct {
	lock    spin.Lock
	locked  bool
	waiters parking.Lot[struct{}]
}

// Lock returns a sender that resumes once the mutex is acquired. Waiters
// are granted the mutex in the order their Lock sender was started,
// matching the frame pipeline's requirement that frame_mutex serializes
// GPU submission order.
func (m *Mutex) Lock() task.Sender[struct{}] {
	return task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		m.lock.Lock()
		if !m.locked {
			m.locked = true
			m.lock.Unlock()
			r.SetValue(struct{}{})
			return
		}
		op := parking.NewOp[struct{}](
			func(struct{}) { r.SetValue(struct{}{}) },
			func() { r.SetDone() },
		)
		m.waiters.Park(op)
		m.lock.Unlock()
	})
}

// Unlock releases the mutex, handing it directly to the longest-waiting
// parked Lock if one exists, or marking the mutex free otherwise.
func (m *Mutex) Unlock() {
	m.lock.Lock()
	if m.waiters.WakeOne(&m.lock, struct{}{}) {
		// Lock already released by WakeOne; locked stays true since
		// ownership transferred directly to the woken waiter.
		return
	}
	// WakeOne always unlocks, even when the lot was empty.
	m.lock.Lock()
	m.locked = false
	m.lock.Unlock()
}
