// Waker interrupts a blocked native event-poll call (the GLFW-equivalent
// "wait for OS events with a timeout" primitive) so the frame pipeline's
// PollOS step never stalls past a frame boundary even when no OS events
// are pending. When a real GUI backend is attached it typically supplies
// its own wake mechanism (e.g. glfwPostEmptyEvent); Waker is the
// fallback this core provides when none is, implemented via the same
// eventfd-write/read pattern the polling backend below it uses.
package ospoll

// Waker is a one-shot-per-cycle wake signal: Wake is safe to call from
// any goroutine, and Wait blocks until the next Wake (or returns
// immediately if one is already pending).
type Waker interface {
	Wake() error
	Wait() error
	Close() error
}
