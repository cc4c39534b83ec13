// Package gpustorage declares the contract the frame pipeline uses to
// coalesce pending GPU uploads into each frame's command buffer,
// recovered from the original engine's GpuStorageManager.hpp.
// Implementations are out of scope for this module.
package gpustorage

import (
	"github.com/ngcore/asynccore/framepacket"
	"github.com/ngcore/asynccore/task"
)

// StaticMesh is an opaque handle to mesh data already resident on the
// GPU.
type StaticMesh struct {
	Handle any
}

// Waiter is signalled once the upload it was issued for has completed
// (its command buffer's fence has fired). Callers awaiting an upload
// park a continuation on it rather than polling.
type Waiter interface {
	Wait() task.Sender[struct{}]
}

// Manager accepts asset uploads and, once per frame, appends whatever
// uploads are pending into that frame's command buffer.
type Manager interface {
	// UploadStaticMesh stages model for upload and returns a handle to
	// its eventual GPU-resident form. The handle is valid for use in a
	// FramePacket once the returned sender resolves.
	UploadStaticMesh(handle framepacket.AssetHandle, model any) task.Sender[*StaticMesh]

	// FrameUpload appends every upload staged since the last call into
	// cmdBuf for frameIndex, returning one Waiter per appended upload so
	// their issuers can be signalled once the frame's fence fires.
	FrameUpload(frameIndex uint64, cmdBuf any) task.Sender[[]Waiter]
}
