// Package eventqueue implements the "run this next frame" primitive: a
// parking lot drained once per frame by the orchestrator via ExecuteAll,
// which performs a WakeAll under the queue's own spinlock. It backs both
// the next-frame event queue and any other per-frame deferred-event
// channel the frame pipeline needs.
package eventqueue

import (
	"github.com/ngcore/asynccore/parking"
	"github.com/ngcore/asynccore/spin"
	"github.com/ngcore/asynccore/task"
)

// Queue is a parking lot flushed once per frame. Its zero value is an
// empty, ready to use Queue.
type Queue struct {
	lock   spin.Lock
	events parking.Lot[struct{}]
}

// Schedule returns a sender that parks its continuation in the queue,
// resuming the next time ExecuteAll is called.
func (q *Queue) Schedule() task.Sender[struct{}] {
	return task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		op := parking.NewOp[struct{}](
			func(struct{}) { r.SetValue(struct{}{}) },
			func() { r.SetDone() },
		)
		q.lock.Lock()
		q.events.Park(op)
		q.lock.Unlock()
	})
}

// ExecuteAll wakes every op currently parked in the queue, in the order
// they were scheduled. An op that re-parks during its own wake callback
// (e.g. by calling Schedule again) is not visible to this call — it waits
// for the next ExecuteAll, since WakeAll splices the queue before
// invoking any wake callback.
func (q *Queue) ExecuteAll() {
	q.lock.Lock()
	q.events.WakeAll(&q.lock, struct{}{})
}

// Close cancels every op still parked in the queue. Intended for use
// during shutdown, once no further Schedule calls are expected.
func (q *Queue) Close() {
	q.lock.Lock()
	parking.MultiCancelAll[struct{}](&q.lock, &q.events)
}
