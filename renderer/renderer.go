// Package renderer declares the contract the frame pipeline invokes once
// per frame to record and submit GPU work, recovered from the original
// engine's IRenderer.hpp. Implementations are out of scope for this
// module.
package renderer

import (
	"github.com/ngcore/asynccore/framepacket"
	"github.com/ngcore/asynccore/task"
	"github.com/ngcore/asynccore/windowing"
)

// Done carries the synchronization primitives a caller waits on to know
// a submitted frame's GPU work has completed.
type Done struct {
	// Sem is signalled by the GPU once the submitted work finishes,
	// unblocking presentation.
	Sem any
	// Fence is signalled once the submitted work finishes, used by the
	// frame pipeline's blocking-pool fence wait.
	Fence any
}

// Renderer records and submits one frame's GPU work.
type Renderer interface {
	// Render records and submits frameIndex's command buffer, rendering
	// packet against presentImage once imageAvailable is signalled.
	Render(frameIndex uint64, packet *framepacket.Packet, presentImage any, imageAvailable any) Done

	// UpdatePresentationTarget rebinds the renderer's framebuffers to a
	// new set of swapchain image views and resolution, following
	// swapchain recreation.
	UpdatePresentationTarget(views []any, resolution windowing.Extent2D) task.Sender[struct{}]
}
