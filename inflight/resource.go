// Package inflight implements a fixed-size ring of per-frame resources:
// one slot per frame that may be simultaneously in flight on the GPU,
// indexed by frame number modulo the engine's configured inflight-frame
// count. It backs command buffers, descriptor sets, and any other
// resource the frame pipeline must not reuse until the GPU has finished
// with a previous frame's copy.
package inflight

import "github.com/ngcore/asynccore/engineconfig"

// Resource is a ring of engineconfig.MaxInflightFrames slots of T, one
// per frame that may be in flight concurrently. The frame count is fixed
// at construction and never changes afterward: resizing the ring while
// frames are in flight would require reasoning about which slots are
// still owned by the GPU, which this package deliberately does not
// support.
type Resource[T any] struct {
	frames int
	slots  []T
}

// New constructs a Resource with one slot per inflight frame, built by
// calling build once per slot index. frames is clamped to
// [1, engineconfig.MaxInflightFrames].
func New[T any](frames int, build func(slot int) T) *Resource[T] {
	if frames < 1 {
		frames = 1
	}
	if frames > engineconfig.MaxInflightFrames {
		frames = engineconfig.MaxInflightFrames
	}
	slots := make([]T, frames)
	for i := range slots {
		slots[i] = build(i)
	}
	return &Resource[T]{frames: frames, slots: slots}
}

// Get returns a pointer to the slot owned by frameIndex.
func (r *Resource[T]) Get(frameIndex uint64) *T {
	return &r.slots[frameIndex%uint64(r.frames)]
}

// GetPrevious returns a pointer to the slot owned by the frame
// immediately preceding frameIndex, wrapping around the ring.
func (r *Resource[T]) GetPrevious(frameIndex uint64) *T {
	prev := (frameIndex + uint64(r.frames) - 1) % uint64(r.frames)
	return &r.slots[prev]
}

// Frames reports the fixed number of slots in the ring.
func (r *Resource[T]) Frames() int {
	return r.frames
}

// Each calls fn once per slot, in slot order. Intended for teardown:
// release every slot's resources before discarding the Resource.
func (r *Resource[T]) Each(fn func(slot int, value *T)) {
	for i := range r.slots {
		fn(i, &r.slots[i])
	}
}
