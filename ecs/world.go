// Package ecs defines the contract the frame pipeline drives the host's
// entity-component-system through: a single Progress call per frame plus
// a slot for the frame packet currently being filled. It deliberately
// knows nothing about any concrete ECS implementation — the pipeline
// only needs the shape described in spec §6.
package ecs

import (
	"time"

	"github.com/ngcore/asynccore/framepacket"
	"github.com/ngcore/asynccore/task"
)

// World is the tick contract the frame pipeline drives once per
// iteration. Progress steps the world by dt and returns false to signal
// engine shutdown.
type World interface {
	Progress(dt time.Duration) bool
}

// CurrentFramePacket is a single-slot holder the frame pipeline
// populates with a pointer to the in-progress frame packet before
// calling Progress, and clears immediately after. It replaces the
// original engine's global CCurrentFramePacket singleton with an
// explicit value the host can embed in its own world state rather than
// reach via process-global lookup.
type CurrentFramePacket struct {
	packet *framepacket.Packet
}

// Set publishes packet as the frame packet in progress.
func (c *CurrentFramePacket) Set(packet *framepacket.Packet) {
	c.packet = packet
}

// Clear removes the published packet. Called once TickECS's Progress
// call has returned.
func (c *CurrentFramePacket) Clear() {
	c.packet = nil
}

// Get returns the currently published packet, or nil if none is
// published. ECS systems call this during Progress to fill in the
// frame's render data.
func (c *CurrentFramePacket) Get() *framepacket.Packet {
	return c.packet
}

// CurrentScope is a single-slot holder for the per-tick AsyncScope,
// published before World.Progress runs so systems can spawn ad-hoc async
// work (additional asset loads, background computation) tied to the
// current frame's lifetime without outliving it. The frame pipeline
// awaits this scope's Cleanup once the tick returns, before polling OS
// events again (the "RetireFrameScope" step).
type CurrentScope struct {
	scope *task.AsyncScope
}

// Set publishes scope as the frame's AsyncScope.
func (c *CurrentScope) Set(scope *task.AsyncScope) {
	c.scope = scope
}

// Clear removes the published scope.
func (c *CurrentScope) Clear() {
	c.scope = nil
}

// Get returns the currently published scope, or nil if none is
// published.
func (c *CurrentScope) Get() *task.AsyncScope {
	return c.scope
}

// Phase identifies one of the tick-observer hooks a host can register
// against, recovering the original engine's tag-driven
// "systems that run once at loop start/end" feature.
type Phase int

const (
	// PhaseGameLoopStarting fires once, before the very first TickECS of
	// the process.
	PhaseGameLoopStarting Phase = iota
	// PhaseGameLoopFinished fires once, after the ECS has requested
	// shutdown and the last TickECS has returned.
	PhaseGameLoopFinished
)

// PhaseObserver is a hook a host registers to run systems tied to a
// specific lifecycle phase rather than every tick.
type PhaseObserver interface {
	OnPhase(phase Phase)
}

// PhaseObserverFunc adapts a function to a PhaseObserver.
type PhaseObserverFunc func(Phase)

func (f PhaseObserverFunc) OnPhase(phase Phase) { f(phase) }
