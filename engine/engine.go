// Package engine wires the frame pipeline, worker pool, blocking pool,
// and OS-polling slot into a single runnable process, the Go analogue
// of the original engine's Engine/EngineHandle split: Engine owns
// construction and the run loop, while the handle surface (here, the
// *Pipeline's own exported methods plus this package's Handle) is what
// collaborators actually hold onto.
package engine

import (
	"fmt"

	"github.com/ngcore/asynccore/blockingpool"
	"github.com/ngcore/asynccore/corelog"
	"github.com/ngcore/asynccore/ecs"
	"github.com/ngcore/asynccore/engineconfig"
	"github.com/ngcore/asynccore/eventqueue"
	"github.com/ngcore/asynccore/frame"
	"github.com/ngcore/asynccore/gpustorage"
	"github.com/ngcore/asynccore/ospoll"
	"github.com/ngcore/asynccore/task"
	"github.com/ngcore/asynccore/windowing"
	"github.com/ngcore/asynccore/workerpool"
)

// Handle is the lightweight, pass-around view of a running Engine that
// collaborators (ECS systems, asset loaders) depend on instead of the
// Engine itself, mirroring the original engine's EngineHandle/"pimpl"
// split: it exposes only the schedulers and the frame-scope/packet
// accessors, never pool internals.
type Handle struct {
	workers   *workerpool.Pool
	blocking  *blockingpool.Pool
	osSlot    *ospoll.Slot
	nextFrame *eventqueue.Queue
	pipeline  *frame.Pipeline
}

// MainScheduler returns the scheduler most work should run on.
func (h *Handle) MainScheduler() task.Scheduler { return h.workers.AsScheduler() }

// BlockingScheduler returns the scheduler for long, blocking work (file
// IO, fence waits).
func (h *Handle) BlockingScheduler() task.Scheduler {
	return blockingScheduler{h.blocking}
}

type blockingScheduler struct{ pool *blockingpool.Pool }

func (s blockingScheduler) Schedule() task.Sender[struct{}] { return s.pool.Schedule() }

// NextFrameScheduler returns the scheduler for work that must run on the
// OS-polling thread just before the next ECS tick.
func (h *Handle) NextFrameScheduler() task.Scheduler { return nextFrameScheduler{h.nextFrame} }

type nextFrameScheduler struct{ q *eventqueue.Queue }

func (s nextFrameScheduler) Schedule() task.Sender[struct{}] { return s.q.Schedule() }

// CurrentFramePacket returns the holder the currently-running ECS tick
// publishes the in-progress frame packet through.
func (h *Handle) CurrentFramePacket() *ecs.CurrentFramePacket { return h.pipeline.CurrentFramePacket() }

// CurrentScope returns the holder the currently-running ECS tick can
// spawn ad-hoc per-tick async work into.
func (h *Handle) CurrentScope() *ecs.CurrentScope { return h.pipeline.CurrentScope() }

// InflightFrames reports the configured pipelining depth.
func (h *Handle) InflightFrames() int { return h.pipeline.InflightFrames() }

// OSPollWorkerID reports the worker index the OS-polling slot is pinned
// to, for diagnostics.
func (h *Handle) OSPollWorkerID() int { return h.osSlot.WorkerID() }

// WakePoll forces a PollOS step currently parked in the fallback Waker to
// resume immediately. A no-op when a real PollEvents backend was
// supplied, since PollOS never parks in that case.
func (h *Handle) WakePoll() error { return h.pipeline.WakePoll() }

// Engine owns construction and the top-level run loop: build every
// collaborator pool, capture the OS-polling slot, wire the frame
// pipeline, and drive it to completion.
type Engine struct {
	cfg      *engineconfig.Config
	workers  *workerpool.Pool
	blocking *blockingpool.Pool
	osPool   *workerpool.Pool
	pipeline *frame.Pipeline
	handle   *Handle
}

// Dependencies are the collaborators New cannot construct itself
// because they depend on concrete window-system/renderer/GPU-storage
// backends outside this module's scope (spec Non-goal: no Vulkan/GLFW
// bindings live here).
type Dependencies struct {
	World      ecs.World
	Windows    []frame.WindowBinding
	GpuStorage gpustorage.Manager

	PollEvents windowing.EventPoller
	// Waker is the fallback OS-event-wait primitive PollOS uses when
	// PollEvents is nil, e.g. an ospoll.NewWaker() constructed by the
	// caller for a headless or no-native-backend deployment. Optional;
	// Engine does not own its lifecycle and never closes it, matching
	// how it treats every other Dependencies collaborator.
	Waker                 ospoll.Waker
	AllocateCommandBuffer func(frameIndex uint64) any
	WaitForFence          func(fence any) error
	Observers             []ecs.PhaseObserver
}

// New constructs an Engine from a resolved Config and its Dependencies.
// It starts the worker pool, blocking pool, and OS-polling slot
// immediately; nothing runs against them until Run is called.
func New(cfg *engineconfig.Config, deps Dependencies) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: nil config")
	}
	if deps.World == nil {
		return nil, fmt.Errorf("engine: Dependencies.World is required")
	}

	if cfg.LogWriter != nil {
		corelog.SetOutput(cfg.LogWriter)
	}
	corelog.SetLevel(cfg.LogLevel)

	workers := workerpool.New(cfg.WorkerThreads)
	blocking := blockingpool.New(cfg.BlockingThreads)
	osPool := workerpool.New(1)

	captured := make(chan *ospoll.Slot, 1)
	ospoll.Capture(osPool).Start(task.FuncReceiver[*ospoll.Slot]{
		Value: func(s *ospoll.Slot) { captured <- s },
	})
	slot := <-captured

	pipeline := frame.New(frame.Config{
		Slot:                  slot,
		Workers:               workers,
		Blocking:              blocking,
		World:                 deps.World,
		Windows:               deps.Windows,
		InflightFrames:        cfg.InflightFrames,
		GpuStorage:            deps.GpuStorage,
		PollEvents:            deps.PollEvents,
		Waker:                 deps.Waker,
		AllocateCommandBuffer: deps.AllocateCommandBuffer,
		WaitForFence:          deps.WaitForFence,
		Observers:             deps.Observers,
		Log:                   corelog.L().Clone().Str(`app`, cfg.AppName).Logger(),
	})

	e := &Engine{
		cfg:      cfg,
		workers:  workers,
		blocking: blocking,
		osPool:   osPool,
		pipeline: pipeline,
	}
	e.handle = &Handle{
		workers:   workers,
		blocking:  blocking,
		osSlot:    slot,
		nextFrame: pipeline.NextFrameEvents(),
		pipeline:  pipeline,
	}
	return e, nil
}

// Handle returns the lightweight collaborator-facing view of this
// engine.
func (e *Engine) Handle() *Handle { return e.handle }

// Run drives the frame pipeline to completion (the ECS requesting
// shutdown, followed by every in-flight render_frame draining) and
// returns the process exit code: 0 on a clean shutdown, -1 if the
// pipeline never resolved a value (cancelled before it could finish).
func (e *Engine) Run() int {
	result := make(chan int, 1)
	e.pipeline.Run().Start(task.FuncReceiver[int]{
		Value: func(code int) { result <- code },
		Done:  func() { result <- -1 },
	})
	code := <-result

	// Workers/Blocking are stopped by the pipeline itself as part of its
	// own shutdown sequence; the OS-polling pool is private to this
	// package, so it's this package's job to retire it.
	e.osPool.RequestStop()
	e.osPool.Wait()

	return code
}
