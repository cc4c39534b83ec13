// Package blockingpool implements the blocking-I/O thread pool: a single
// shared FIFO parking lot served by K goroutines with no work stealing,
// for synchronous file I/O, GPU waitForFences, and other calls that are
// allowed to block indefinitely. Unlike workerpool, there is exactly one
// queue: wakes are strictly FIFO across the whole pool.
package blockingpool

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

// Pool is a fixed-size set of goroutines draining a single shared FIFO
// lot.
type Pool struct {
	lock          spin.Lock
	lot           parking.Lot[struct{}]
	cond          *sync.Cond
	stopRequested atomic.Bool
	wg            sync.WaitGroup
	enqueued      atomic.Uint64
	log           *logiface.Logger[*stumpy.Event]
}

// New starts a pool of n blocking-worker goroutines. n is floored at 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		log: corelog.Pool("blocking-pool"),
	}
	p.cond = sync.NewCond(&p.lock)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.runWorker()
	}
	return p
}

// Schedule returns a sender that resumes on one of the pool's blocking
// worker goroutines.
func (p *Pool) Schedule() task.Sender[struct{}] {
	return task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		if p.stopRequested.Load() {
			r.SetDone()
			return
		}

		op := parking.NewOp[struct{}](
			func(struct{}) { r.SetValue(struct{}{}) },
			func() { r.SetDone() },
		)

		p.lock.Lock()
		p.lot.Park(op)
		p.lock.Unlock()
		p.enqueued.Add(1)
		p.cond.Signal()
	})
}

func (p *Pool) runWorker() {
	defer p.wg.Done()
	for !p.stopRequested.Load() {
		p.lock.Lock()
		for {
			if p.lot.WakeOne(&p.lock, struct{}{}) {
				break
			}
			if p.stopRequested.Load() {
				break
			}
			p.lock.Lock()
			p.cond.Wait()
		}
		if p.stopRequested.Load() {
			break
		}
	}

	p.lock.Lock()
	parking.MultiCancelAll[struct{}](&p.lock, &p.lot)
}

// RequestStop cancels every parked op and lets every worker goroutine
// exit. Schedule called after RequestStop immediately delivers SetDone.
func (p *Pool) RequestStop() {
	p.log.Info().Log(`blocking pool stop requested`)
	p.stopRequested.Store(true)
	p.lock.Lock()
	p.cond.Signal()
	p.lock.Unlock()
}

// Wait blocks until every worker goroutine has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Enqueued returns the total number of ops scheduled across the pool's
// lifetime.
func (p *Pool) Enqueued() uint64 {
	return p.enqueued.Load()
}
