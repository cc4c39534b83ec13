// Package ospoll implements the OS-polling slot: a single pre-captured
// subscheduler sender pinned to whichever worker first captures it,
// matching spec §4.6's contract that every OS-window creation,
// destruction, event-polling, and GLFW-equivalent call must be preceded
// by awaiting this sender. Violating that contract is undefined
// behavior, same as the original.
package ospoll

import (
	"github.com/ngcore/asynccore/task"
	"github.com/ngcore/asynccore/workerpool"
)

// Slot is the captured OS-polling affinity. The zero value is not
// usable; construct one with Capture.
type Slot struct {
	place workerpool.Place
}

// Capture schedules once onto pool and pins a Slot to whichever worker
// the pool resumes on, following the original's "call
// schedule_with_subscheduler from the engine's startup thread"
// construction. Call this exactly once per process; every subsequent
// user of the returned Slot shares the same underlying worker.
func Capture(pool *workerpool.Pool) task.Sender[*Slot] {
	return task.Then(pool.Schedule(), func(pl workerpool.Place) *Slot {
		return &Slot{place: pl}
	})
}

// Schedule returns a sender that resumes on the captured OS-polling
// worker, regardless of which worker the caller currently runs on.
func (s *Slot) Schedule() task.Sender[struct{}] {
	return task.Then(s.place.ScheduleWithSubscheduler(), func(workerpool.Place) struct{} { return struct{}{} })
}

// AsScheduler adapts Slot to the generic task.Scheduler interface, for
// combinators (e.g. task.On) that only need "resumes on the OS-polling
// thread".
func (s *Slot) AsScheduler() task.Scheduler {
	return slotScheduler{s}
}

type slotScheduler struct{ slot *Slot }

func (sc slotScheduler) Schedule() task.Sender[struct{}] { return sc.slot.Schedule() }

// WorkerID returns the index of the worker this Slot is pinned to, for
// diagnostics and the OS-thread-affinity test property (spec §8).
func (s *Slot) WorkerID() int {
	return s.place.ID()
}

// Pool returns the worker pool this Slot was captured from, so an owner
// that only holds onto the Slot can still stop the pool backing it at
// shutdown.
func (s *Slot) Pool() *workerpool.Pool {
	return s.place.Pool()
}
