// Package windowing declares the contract the frame pipeline drives
// swapchain image acquisition and presentation through. Implementations
// (GLFW/Vulkan swapchain wiring) are out of scope for this module; only
// the task-shaped interface the pipeline depends on lives here,
// recovered from the original engine's Window.hpp.
package windowing

import (
	"github.com/ngcore/asynccore/task"
)

// Extent2D is a window/swapchain resolution in pixels.
type Extent2D struct {
	Width, Height uint32
}

// SwapchainImage is one acquired presentable image.
type SwapchainImage struct {
	// View identifies the acquired image. Concrete implementations
	// embed whatever native handle type they use; this module only
	// needs it as an opaque, comparable token for MarkImageFree/Present.
	View any
	// Available is signalled once the image is safe to write into.
	Available any
}

// EventPoller is the OS-level "pump the window system's event queue"
// callback (spec §6's poll_events()). The frame pipeline invokes it
// exactly once per PollOS step, always on the OS-polling thread.
type EventPoller func()

// Window is the per-window acquisition/presentation contract. A nil
// *SwapchainImage returned from AcquireNext (with a nil error) signals
// that the swapchain is out of date and must be recreated before the
// next acquisition; the frame for that window is skipped this
// iteration, not retried.
type Window interface {
	// AcquireNext asynchronously acquires the next presentable image for
	// frameIndex. Must only be invoked from inside a render task that
	// has already acquired the global frame-submission ordering lock.
	AcquireNext(frameIndex uint64) task.Sender[*SwapchainImage]

	// Present submits which for presentation once wait is signalled.
	// Returns false if the swapchain is now out of date and needs
	// recreation.
	Present(wait any, which any) bool

	// RecreateSwapchain rebuilds the swapchain at its current resolution
	// and returns the new extent, or nil if recreation failed and should
	// be retried. Must only be called from the OS-polling thread.
	RecreateSwapchain() task.Sender[*Extent2D]

	// MarkImageFree releases an acquired image back to the swapchain
	// once every consumer (renderer, present) is done with it.
	MarkImageFree(which any)
}
