// Package staticscope implements a bounded concurrent spawner: at most N
// senders run concurrently through a StaticScope, with additional spawns
// parked until a slot frees up. It backs the frame pipeline's per-system
// task fan-out, where the number of concurrently in-flight systems is
// bounded by the engine's thread budget rather than the number of systems.
//
// A sender spawned into a StaticScope is expected to complete via
// SetValue or SetDone. SetError is treated as a fatal, non-recoverable
// condition: there is no defined recovery for a core system task failing,
// so the scope logs it and terminates the process, mirroring how the
// original engine's done-receiver called std::terminate on error.
package staticscope

import (
	"fmt"

	"github.com/ngcore/asynccore/corelog"
	"github.com/ngcore/asynccore/corerr"
	"github.com/ngcore/asynccore/parking"
	"github.com/ngcore/asynccore/spin"
	"github.com/ngcore/asynccore/task"
)

// StaticScope bounds the number of senders running concurrently through
// it to capacity. Spawns beyond capacity park until a running sender
// completes and frees its slot.
type StaticScope struct {
	lock     spin.Lock
	capacity int
	size     int

	// nextFree is a capacity+1 sized free list: nextFree[slot] is the next
	// free slot after slot is taken, or the sentinel value -1.
	nextFree  []int
	firstFree int

	awaitingSpawn       parking.Lot[int]
	awaitingAllFinished parking.Lot[struct{}]
}

const noSlot = -1

// New returns a StaticScope that allows at most capacity senders to run
// concurrently. capacity is floored at 1.
func New(capacity int) *StaticScope {
	if capacity < 1 {
		capacity = 1
	}
	s := &StaticScope{
		capacity:  capacity,
		nextFree:  make([]int, capacity),
		firstFree: 0,
	}
	for i := range s.nextFree {
		if i+1 < capacity {
			s.nextFree[i] = i + 1
		} else {
			s.nextFree[i] = noSlot
		}
	}
	return s
}

// SpawnNext starts sender in the next available slot, parking the
// returned sender's continuation if the scope is already at capacity.
// It is a package-level function rather than a method because Go methods
// cannot introduce type parameters beyond the receiver's own.
func SpawnNext[T any](s *StaticScope, sender task.Sender[T]) task.Sender[struct{}] {
	return task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		op := parking.NewOp[int](
			func(slot int) {
				runInSlot(s, slot, sender)
				r.SetValue(struct{}{})
			},
			func() { r.SetDone() },
		)
		s.doSpawn(op)
	})
}

func (s *StaticScope) doSpawn(op *parking.Op[int]) {
	s.lock.Lock()
	if s.size < s.capacity {
		slot := s.takeSlot()
		s.lock.Unlock()
		// Unlock before waking: the wake callback runs sender.Start
		// synchronously and may reenter this scope (e.g. spawning
		// another task from within the first task's continuation).
		op.Wake(slot)
		return
	}
	s.awaitingSpawn.Park(op)
	s.lock.Unlock()
}

func runInSlot[T any](s *StaticScope, slot int, sender task.Sender[T]) {
	sender.Start(task.FuncReceiver[T]{
		Value: func(T) { s.onDone(slot) },
		Error: func(err error) {
			corelog.L().Fatal().Err(err).Int(`slot`, slot).
				Log(`static scope spawned sender errored; no recovery path is defined`)
		},
		Done: func() { s.onDone(slot) },
	})
}

func (s *StaticScope) onDone(slot int) {
	s.lock.Lock()
	if s.awaitingSpawn.WakeOne(&s.lock, slot) {
		// Lock released by WakeOne; the slot was handed directly to the
		// op that was waiting, so size is unchanged.
		return
	}
	// WakeOne always unlocks, even when the lot was empty, so reacquire
	// before touching the free list.
	s.lock.Lock()
	s.freeSlot(slot)
	if s.size == 0 {
		s.awaitingAllFinished.WakeAll(&s.lock, struct{}{})
		return
	}
	s.lock.Unlock()
}

func (s *StaticScope) freeSlot(slot int) {
	s.nextFree[slot] = s.firstFree
	s.firstFree = slot
	s.size--
}

func (s *StaticScope) takeSlot() int {
	if s.firstFree == noSlot {
		// size < capacity (checked by the caller) guarantees a free slot
		// exists; reaching here means the free list was corrupted by a
		// double-free or a slot handed out twice.
		panic(&corerr.InvariantError{
			Invariant: "staticscope: free-list exhausted below capacity",
			Detail:    fmt.Sprintf("size=%d capacity=%d", s.size, s.capacity),
		})
	}
	slot := s.firstFree
	s.firstFree = s.nextFree[slot]
	s.size++
	return slot
}

// AllFinished returns a sender that resumes once every currently-running
// spawned sender has completed. It does not block future spawns.
func (s *StaticScope) AllFinished() task.Sender[struct{}] {
	return task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		s.lock.Lock()
		if s.size == 0 {
			s.lock.Unlock()
			r.SetValue(struct{}{})
			return
		}
		op := parking.NewOp[struct{}](
			func(struct{}) { r.SetValue(struct{}{}) },
			func() { r.SetDone() },
		)
		s.awaitingAllFinished.Park(op)
		s.lock.Unlock()
	})
}

// Size reports the number of senders currently running through the
// scope.
func (s *StaticScope) Size() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.size
}

// Capacity reports the maximum number of concurrently running senders.
func (s *StaticScope) Capacity() int {
	return s.capacity
}
