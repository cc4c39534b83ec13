// Package frame implements the frame pipeline orchestrator: the single
// long-lived task that drives PollOS -> TickECS -> SpawnRender ->
// RetireFrameScope once per iteration, bounding concurrently in-flight
// render_frame invocations to a configured depth via a StaticScope and
// serializing GPU submission order via a FIFO async mutex, matching the
// original engine's Engine::main_event_loop and
// GlobalRenderer::renderFrame.
package frame

import (
	"sync"
	"time"

	"github.com/ngcore/asynccore/asyncmutex"
	"github.com/ngcore/asynccore/blockingpool"
	"github.com/ngcore/asynccore/corelog"
	"github.com/ngcore/asynccore/corerr"
	"github.com/ngcore/asynccore/ecs"
	"github.com/ngcore/asynccore/eventqueue"
	"github.com/ngcore/asynccore/framepacket"
	"github.com/ngcore/asynccore/gpustorage"
	"github.com/ngcore/asynccore/inflight"
	"github.com/ngcore/asynccore/ospoll"
	"github.com/ngcore/asynccore/renderer"
	"github.com/ngcore/asynccore/staticscope"
	"github.com/ngcore/asynccore/task"
	"github.com/ngcore/asynccore/windowing"
	"github.com/ngcore/asynccore/workerpool"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// WindowBinding pairs a window with the renderer responsible for
// drawing into it, mirroring the original engine's
// window_renderer_mapping_.
type WindowBinding struct {
	Window   windowing.Window
	Renderer renderer.Renderer
}

// Config wires a Pipeline's collaborators. Every field besides Slot,
// Workers, Blocking, World, and Windows is optional.
type Config struct {
	Slot     *ospoll.Slot
	Workers  *workerpool.Pool
	Blocking *blockingpool.Pool
	World    ecs.World
	Windows  []WindowBinding

	// InflightFrames bounds the number of render_frame invocations alive
	// concurrently; also the ring size for per-slot inflight mutexes.
	InflightFrames int

	GpuStorage gpustorage.Manager

	// PollEvents pumps the window system's event queue once per PollOS
	// step. Nil is a valid no-op, for headless tests.
	PollEvents windowing.EventPoller

	// Waker is the fallback OS-event-wait primitive used when PollEvents
	// is nil: PollOS blocks on it instead of spinning, and any goroutine
	// holding the Pipeline can call WakePoll to force the next iteration
	// to start early. Ignored when PollEvents is set, since a real
	// window-system backend is expected to supply its own wake mechanism
	// (e.g. glfwPostEmptyEvent).
	Waker ospoll.Waker

	// AllocateCommandBuffer allocates (or selects, from a pre-built
	// ring) the one-shot command buffer for frameIndex. Nil yields a nil
	// command buffer token, which is enough for collaborators that
	// don't need a real one (e.g. in tests).
	AllocateCommandBuffer func(frameIndex uint64) any

	// WaitForFence blocks (on the blocking pool) until fence is
	// signalled, returning an error on timeout/device-loss. Nil always
	// succeeds immediately.
	WaitForFence func(fence any) error

	// Observers run once each at PhaseGameLoopStarting and
	// PhaseGameLoopFinished.
	Observers []ecs.PhaseObserver

	Log *logiface.Logger[*stumpy.Event]
}

// Pipeline is the frame pipeline orchestrator. Exactly one instance
// should run per process (spec §4.8 invariant).
type Pipeline struct {
	cfg Config

	frameIndex uint64
	lastTick   time.Time

	nextFrameEvents eventqueue.Queue
	renderingScope  *staticscope.StaticScope
	frameMutex      asyncmutex.Mutex
	inflightMutexes *inflight.Resource[asyncmutex.Mutex]

	currentPacket ecs.CurrentFramePacket
	currentScope  ecs.CurrentScope
	// pendingFrameScope holds the AsyncScope from the most recent
	// TickECS until RetireFrameScope awaits its Cleanup.
	pendingFrameScope *task.AsyncScope

	windowStateMu sync.Mutex
	needsRecreate []bool

	log *logiface.Logger[*stumpy.Event]
}

// New constructs a Pipeline. InflightFrames is clamped the same way
// engineconfig.Config clamps it.
func New(cfg Config) *Pipeline {
	if cfg.InflightFrames < 1 {
		cfg.InflightFrames = 1
	}
	log := cfg.Log
	if log == nil {
		log = corelog.L()
	}
	p := &Pipeline{
		cfg:           cfg,
		lastTick:      time.Now(),
		needsRecreate: make([]bool, len(cfg.Windows)),
		log:           log,
	}
	p.renderingScope = staticscope.New(cfg.InflightFrames)
	p.inflightMutexes = inflight.New(cfg.InflightFrames, func(int) asyncmutex.Mutex { return asyncmutex.Mutex{} })
	return p
}

// NextFrameEvents returns the scheduler other goroutines (including
// worker-pool tasks and ECS systems) use to run a continuation on the
// OS-polling thread before the next TickECS, in enqueue order. If PollOS
// is currently parked in the fallback Waker (no PollEvents configured),
// call WakePoll after scheduling so the queued continuation isn't left
// waiting behind an idle native poll.
func (p *Pipeline) NextFrameEvents() *eventqueue.Queue {
	return &p.nextFrameEvents
}

// WakePoll forces a PollOS step currently parked in the fallback Waker to
// resume immediately, the headless/no-backend equivalent of the original
// engine's glfwPostEmptyEvent. A no-op when no Waker is configured.
func (p *Pipeline) WakePoll() error {
	if p.cfg.Waker == nil {
		return nil
	}
	return p.cfg.Waker.Wake()
}

// Run returns a sender that drives the pipeline until the ECS requests
// shutdown, resolving with the process exit code (0 clean, -1 on a
// fatal condition that the caller catches instead of letting the
// process exit out from under it).
func (p *Pipeline) Run() task.Sender[int] {
	return task.SenderFunc[int](func(r task.Receiver[int]) {
		for _, obs := range p.cfg.Observers {
			obs.OnPhase(ecs.PhaseGameLoopStarting)
		}
		p.cfg.Slot.Schedule().Start(task.FuncReceiver[struct{}]{
			Value: func(struct{}) { p.iterate(r) },
			Done:  func() { r.SetValue(0) },
		})
	})
}

func (p *Pipeline) iterate(r task.Receiver[int]) {
	p.pollOS()

	packet, shouldContinue := p.tickECS()
	if !shouldContinue {
		p.shutdown(r)
		return
	}

	render := p.renderFrameSender(p.frameIndex, packet)
	staticscope.SpawnNext[struct{}](p.renderingScope, render).Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) { p.retireFrameScope(r) },
		Done:  func() { r.SetValue(0) },
	})
}

func (p *Pipeline) pollOS() {
	p.frameIndex++
	if p.cfg.PollEvents != nil {
		p.cfg.PollEvents()
	} else if p.cfg.Waker != nil {
		// No real window-system backend attached: block on the fallback
		// waker instead of spinning. WakePoll is what keeps this from
		// stalling past a frame boundary once there's actually work to do.
		if err := p.cfg.Waker.Wait(); err != nil {
			p.log.Err().Err(err).Log(`os-poll waker wait failed`)
		}
	}
	p.nextFrameEvents.ExecuteAll()

	p.windowStateMu.Lock()
	toRecreate := make([]int, 0)
	for i, needs := range p.needsRecreate {
		if needs {
			toRecreate = append(toRecreate, i)
			p.needsRecreate[i] = false
		}
	}
	p.windowStateMu.Unlock()

	for _, i := range toRecreate {
		p.recreateSwapchain(i)
	}
}

func (p *Pipeline) recreateSwapchain(i int) {
	binding := p.cfg.Windows[i]
	done := make(chan struct{})
	binding.Window.RecreateSwapchain().Start(task.FuncReceiver[*windowing.Extent2D]{
		Value: func(extent *windowing.Extent2D) {
			defer close(done)
			if extent == nil {
				p.markNeedsRecreate(i)
				return
			}
			binding.Renderer.UpdatePresentationTarget(nil, *extent).Start(task.FuncReceiver[struct{}]{})
		},
		Error: func(err error) {
			defer close(done)
			transient := &corerr.TransientError{Op: "windowing.RecreateSwapchain", Retry: true, Cause: err}
			p.markNeedsRecreate(i)
			p.log.Err().Err(transient).Int(`window`, i).Log(`swapchain recreation failed; retrying next frame`)
		},
		Done: func() { close(done) },
	})
	<-done
}

func (p *Pipeline) markNeedsRecreate(i int) {
	p.windowStateMu.Lock()
	p.needsRecreate[i] = true
	p.windowStateMu.Unlock()
}

func (p *Pipeline) tickECS() (*framepacket.Packet, bool) {
	packet := &framepacket.Packet{}
	scope := task.NewAsyncScope()

	p.currentPacket.Set(packet)
	p.currentScope.Set(scope)

	now := time.Now()
	dt := now.Sub(p.lastTick)
	p.lastTick = now

	shouldContinue := p.cfg.World.Progress(dt)

	p.currentPacket.Clear()
	p.currentScope.Clear()

	p.pendingFrameScope = scope
	return packet, shouldContinue
}

func (p *Pipeline) retireFrameScope(r task.Receiver[int]) {
	scope := p.pendingFrameScope
	p.pendingFrameScope = nil
	if scope == nil {
		p.iterate(r)
		return
	}
	task.On[struct{}](p.cfg.Workers.AsScheduler(), scope.Cleanup()).Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) {
			p.cfg.Slot.Schedule().Start(task.FuncReceiver[struct{}]{
				Value: func(struct{}) { p.iterate(r) },
				Done:  func() { r.SetValue(0) },
			})
		},
		Done: func() { r.SetValue(0) },
	})
}

func (p *Pipeline) shutdown(r task.Receiver[int]) {
	p.renderingScope.AllFinished().Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) {
			for _, obs := range p.cfg.Observers {
				obs.OnPhase(ecs.PhaseGameLoopFinished)
			}
			p.cfg.Workers.RequestStop()
			p.cfg.Blocking.RequestStop()
			p.log.Info().Log(`frame pipeline finished successfully`)
			r.SetValue(0)
		},
		Done: func() { r.SetValue(0) },
	})
}

// renderFrameSender implements render_frame (spec §4.8), scheduled onto
// a worker: acquire frame_mutex (FIFO submission order), acquire this
// ring slot's inflight mutex, acquire swapchain images, coalesce GPU
// uploads, render, present, release frame_mutex, wait for fences on the
// blocking pool, mark images free, release the inflight mutex.
func (p *Pipeline) renderFrameSender(frameIndex uint64, packet *framepacket.Packet) task.Sender[struct{}] {
	return task.On[struct{}](p.cfg.Workers.AsScheduler(), task.SenderFunc[struct{}](func(r task.Receiver[struct{}]) {
		p.frameMutex.Lock().Start(task.FuncReceiver[struct{}]{
			Value: func(struct{}) { p.renderFrameWithFrameMutex(frameIndex, packet, r) },
			Done:  r.SetDone,
		})
	}))
}

func (p *Pipeline) renderFrameWithFrameMutex(frameIndex uint64, packet *framepacket.Packet, r task.Receiver[struct{}]) {
	inflightMutex := p.inflightMutexes.Get(frameIndex)
	inflightMutex.Lock().Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) { p.renderFrameWithInflightMutex(frameIndex, packet, inflightMutex, r) },
		Done: func() {
			p.frameMutex.Unlock()
			r.SetDone()
		},
	})
}

func (p *Pipeline) renderFrameWithInflightMutex(frameIndex uint64, packet *framepacket.Packet, inflightMutex *asyncmutex.Mutex, r task.Receiver[struct{}]) {
	acquires := make([]task.Sender[*windowing.SwapchainImage], len(p.cfg.Windows))
	for i, binding := range p.cfg.Windows {
		acquires[i] = binding.Window.AcquireNext(frameIndex)
	}

	task.WhenAll(acquires...).Start(task.FuncReceiver[[]*windowing.SwapchainImage]{
		Value: func(images []*windowing.SwapchainImage) {
			p.recordAndSubmit(frameIndex, packet, images, inflightMutex, r)
		},
		Error: func(err error) {
			p.frameMutex.Unlock()
			inflightMutex.Unlock()
			r.SetError(err)
		},
		Done: func() {
			p.frameMutex.Unlock()
			inflightMutex.Unlock()
			r.SetDone()
		},
	})
}

func (p *Pipeline) recordAndSubmit(frameIndex uint64, packet *framepacket.Packet, images []*windowing.SwapchainImage, inflightMutex *asyncmutex.Mutex, r task.Receiver[struct{}]) {
	var cmdBuf any
	if p.cfg.AllocateCommandBuffer != nil {
		cmdBuf = p.cfg.AllocateCommandBuffer(frameIndex)
	}

	finishUpload := func() {
		type renderResult struct {
			binding windowing.Window
			image   *windowing.SwapchainImage
			done    renderer.Done
		}
		results := make([]renderResult, 0, len(images))
		for i, img := range images {
			if img == nil {
				p.markNeedsRecreate(i)
				continue
			}
			done := p.cfg.Windows[i].Renderer.Render(frameIndex, packet, img.View, img.Available)
			results = append(results, renderResult{binding: p.cfg.Windows[i].Window, image: img, done: done})
		}

		for _, res := range results {
			if !res.binding.Present(res.done.Sem, res.image.View) {
				p.markPresentFailedFor(res.binding)
			}
		}

		// Release frame_mutex now: all work is behind GPU fences, order
		// is fixed by submission, not by holding this lock any longer.
		p.frameMutex.Unlock()

		p.cfg.Blocking.Schedule().Start(task.FuncReceiver[struct{}]{
			Value: func(struct{}) {
				for _, res := range results {
					if p.cfg.WaitForFence != nil {
						if err := p.cfg.WaitForFence(res.done.Fence); err != nil {
							p.log.Err().Err(err).Uint64(`frame`, frameIndex).Log(`fence wait failed; treating as device loss`)
							inflightMutex.Unlock()
							r.SetError(&corerr.FatalError{Reason: "fence wait failed", Cause: err})
							return
						}
					}
				}
				for _, res := range results {
					res.binding.MarkImageFree(res.image.View)
				}
				inflightMutex.Unlock()
				r.SetValue(struct{}{})
			},
			Done: func() {
				inflightMutex.Unlock()
				r.SetDone()
			},
		})
	}

	if p.cfg.GpuStorage == nil {
		finishUpload()
		return
	}
	p.cfg.GpuStorage.FrameUpload(frameIndex, cmdBuf).Start(task.FuncReceiver[[]gpustorage.Waiter]{
		Value: func([]gpustorage.Waiter) { finishUpload() },
		Error: func(err error) {
			p.frameMutex.Unlock()
			inflightMutex.Unlock()
			r.SetError(err)
		},
		Done: func() {
			p.frameMutex.Unlock()
			inflightMutex.Unlock()
			r.SetDone()
		},
	})
}

func (p *Pipeline) markPresentFailedFor(w windowing.Window) {
	for i, binding := range p.cfg.Windows {
		if binding.Window == w {
			p.markNeedsRecreate(i)
			return
		}
	}
}

// FrameIndex reports the most recently started frame's index.
func (p *Pipeline) FrameIndex() uint64 {
	return p.frameIndex
}

// InflightFrames reports the configured pipelining depth.
func (p *Pipeline) InflightFrames() int {
	return p.cfg.InflightFrames
}

// CurrentFramePacket returns the holder ECS systems publish the
// in-progress frame packet through during a tick.
func (p *Pipeline) CurrentFramePacket() *ecs.CurrentFramePacket {
	return &p.currentPacket
}

// CurrentScope returns the holder ECS systems spawn ad-hoc per-tick
// async work into.
func (p *Pipeline) CurrentScope() *ecs.CurrentScope {
	return &p.currentScope
}
