// Package workerpool implements the multi-threaded work-stealing pool: N
// worker goroutines, each owning two parking lots (a general lot fed by
// round-robin enqueue, and a pinned lot reachable only via a subscheduler
// captured on that same worker), a best-effort steal loop, and cooperative
// shutdown via parking.MultiCancelAll.
//
// Go has no thread-local storage, so schedule_with_subscheduler's
// "resume on whatever worker is currently running" contract is reified as
// an explicit value instead of an ambient lookup: Schedule delivers a
// [Place] to its continuation, and the continuation pins further work to
// that same worker by calling Place.ScheduleWithSubscheduler rather than
// reading a thread-local. This is the one place the translation departs
// from the original's shape, and does so because Go intentionally has no
// equivalent of the C++ thread_local this_thread_idx_ it replaces.
package workerpool

import (
	"sync"
	"sync/atomic"

	"github.com/ngcore/asynccore/corelog"
	"github.com/ngcore/asynccore/parking"
	"github.com/ngcore/asynccore/spin"
	"github.com/ngcore/asynccore/task"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Pool is a fixed-size set of worker goroutines sharing load via
// round-robin enqueue and best-effort work stealing.
type Pool struct {
	workers      []*worker
	roundRobin   atomic.Uint64
	stopRequested atomic.Bool
	wg           sync.WaitGroup
	metrics      poolMetrics
	log          *logiface.Logger[*stumpy.Event]
}

type worker struct {
	id          int
	pinnedLock  spin.Lock
	pinned      parking.Lot[int]
	generalLock spin.Lock
	general     parking.Lot[int]
	multilock   *spin.MultiLock
	cond        *sync.Cond
}

func newWorker(id int) *worker {
	w := &worker{id: id}
	w.multilock = spin.New(&w.pinnedLock, &w.generalLock)
	w.cond = sync.NewCond(w.multilock)
	return w
}

// New starts a pool of n worker goroutines. n is floored at 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		workers: make([]*worker, n),
		log:     corelog.Pool("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = newWorker(i)
	}
	p.wg.Add(n)
	for _, w := range p.workers {
		w := w
		go p.runWorker(w)
	}
	return p
}

// Place identifies the worker a continuation is currently resuming on, as
// delivered by Schedule. Use Place.ScheduleWithSubscheduler to pin later
// work back to this exact worker.
type Place struct {
	pool *Pool
	id   int
}

// Pool returns the pool this Place belongs to.
func (pl Place) Pool() *Pool { return pl.pool }

// ID returns the index of the worker this Place was delivered on.
func (pl Place) ID() int { return pl.id }

// Schedule returns a sender that resumes on some worker chosen by the
// pool's load-balancing policy.
func (p *Pool) Schedule() task.Sender[Place] {
	return task.SenderFunc[Place](func(r task.Receiver[Place]) {
		p.enqueue(-1, r)
	})
}

// ScheduleWithSubscheduler returns a sender that resumes on the exact
// worker identified by pl, by enqueueing into that worker's pinned lot.
func (pl Place) ScheduleWithSubscheduler() task.Sender[Place] {
	return task.SenderFunc[Place](func(r task.Receiver[Place]) {
		pl.pool.enqueue(pl.id, r)
	})
}

// AsScheduler adapts the pool's floating Schedule to the generic
// task.Scheduler interface, discarding the delivered Place, for
// combinators that only need "now running somewhere in the pool".
func (p *Pool) AsScheduler() task.Scheduler {
	return floatingScheduler{p}
}

type floatingScheduler struct{ p *Pool }

func (f floatingScheduler) Schedule() task.Sender[struct{}] {
	return task.Then(f.p.Schedule(), func(Place) struct{} { return struct{}{} })
}

// enqueue parks a continuation op for r. requestedThread == -1 requests
// the floating scheduler's load-balancing policy; any other value pins to
// that worker's pinned lot.
func (p *Pool) enqueue(requestedThread int, r task.Receiver[Place]) {
	if p.stopRequested.Load() {
		r.SetDone()
		return
	}

	op := parking.NewOp[int](
		func(id int) { r.SetValue(Place{pool: p, id: id}) },
		func() { r.SetDone() },
	)

	if requestedThread >= 0 {
		w := p.workers[requestedThread]
		w.pinnedLock.Lock()
		w.pinned.Park(op)
		w.pinnedLock.Unlock()
		w.cond.Signal()
		return
	}

	n := len(p.workers)
	target := int(p.roundRobin.Add(1)-1) % n

	for i := 0; i < n; i++ {
		j := i + target
		if j >= n {
			j -= n
		}
		w := p.workers[j]
		if w.generalLock.TryLock() {
			w.general.Park(op)
			w.generalLock.Unlock()
			w.cond.Signal()
			p.metrics.recordEnqueue()
			return
		}
	}

	w := p.workers[target]
	w.generalLock.Lock()
	w.general.Park(op)
	w.generalLock.Unlock()
	w.cond.Signal()
	p.metrics.recordEnqueue()
}

func (p *Pool) runWorker(w *worker) {
	defer p.wg.Done()
	for !p.stopRequested.Load() {
		p.runTask(w)
	}

	w.multilock.Lock()
	parking.MultiCancelAll[int](w.multilock, &w.pinned, &w.general)
}

// runTask is one iteration of a worker's consumer loop: try the worker's
// own pinned lot, then best-effort steal from every other worker's
// general lot in rotating order, and finally block on the condition
// variable covering both of this worker's own lots.
func (p *Pool) runTask(w *worker) {
	if w.pinnedLock.TryLock() {
		if w.pinned.WakeOne(&w.pinnedLock, w.id) {
			p.metrics.recordRun()
			return
		}
	}

	n := len(p.workers)
	for i := 0; i < n; i++ {
		j := i + w.id
		if j >= n {
			j -= n
		}
		other := p.workers[j]
		if other.generalLock.TryLock() {
			if other.general.WakeOne(&other.generalLock, w.id) {
				p.metrics.recordRun()
				return
			}
		}
	}

	w.multilock.Lock()
	for {
		if w.pinned.WakeOne(w.multilock, w.id) {
			p.metrics.recordRun()
			return
		}
		w.multilock.Lock()
		if w.general.WakeOne(w.multilock, w.id) {
			p.metrics.recordRun()
			return
		}
		if p.stopRequested.Load() {
			return
		}
		w.multilock.Lock()
		w.cond.Wait()
	}
}

// RequestStop cancels every parked op across every worker's two lots and
// lets every worker goroutine exit its consumer loop. Schedule and
// ScheduleWithSubscheduler called after RequestStop immediately deliver
// SetDone rather than parking.
func (p *Pool) RequestStop() {
	p.log.Info().Int(`workers`, len(p.workers)).Log(`worker pool stop requested`)
	p.stopRequested.Store(true)
	for _, w := range p.workers {
		w.multilock.Lock()
		w.cond.Signal()
		w.multilock.Unlock()
	}
}

// Wait blocks until every worker goroutine has exited, which only happens
// after RequestStop.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Metrics returns a snapshot of the pool's runtime counters.
func (p *Pool) Metrics() Metrics {
	return Metrics{
		enqueued: p.metrics.enqueued.Load(),
		run:      p.metrics.run.Load(),
	}
}
