// Package framepacket defines the per-frame data snapshot the ECS tick
// produces and the renderer consumes: the minimal set of matrices,
// static-mesh instances, and GUI draw data a frame needs to be rendered,
// with no dependency on any particular ECS or asset-loading
// implementation.
package framepacket

// AssetHandle is an opaque, comparable reference to a loaded asset.
// Asset loading itself is out of scope for this module; AssetHandle
// exists only so StaticMeshPacket has something to key uploads and
// lookups by.
type AssetHandle struct {
	Generation uint32
	Index      uint32
}

// Mat4 is a column-major 4x4 transform matrix, laid out the way a GLM or
// Vulkan-facing math library would store one.
type Mat4 [16]float32

// StaticMeshPacket is one static-mesh instance to render this frame.
type StaticMeshPacket struct {
	Transform Mat4
	Model     AssetHandle
}

// GuiContext identifies an independent GUI overlay (one per ImGui-style
// context a host application may run).
type GuiContext uint64

// GuiFramePacket is one GUI overlay's draw data for this frame. DrawData
// is opaque to this module; only the renderer interprets it.
type GuiFramePacket struct {
	DrawData any
}

// Packet is the full snapshot a single frame's render pass consumes.
// Producers are ECS systems running during TickECS; the sole consumer is
// the renderer invoked from SpawnRender.
type Packet struct {
	View          Mat4
	FOV           float32
	Aspect        float32 // derived by the renderer from the presentation target, not the producer
	Near          float32
	Far           float32
	StaticMeshes  []StaticMeshPacket
	GuiPackets    map[GuiContext]GuiFramePacket
}
