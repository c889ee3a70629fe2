// Package gpucore defines the GPU boundary used by the vrs controller.
//
// The controller never talks to a graphics API directly. Everything it needs
// from the host renderer is expressed by the small interfaces in this package:
//
//   - [Device] answers capability queries and creates root signatures and
//     compute pipeline states.
//   - [CommandList] records barriers, bindings, root constants, dispatches and
//     rasterizer shading-rate state.
//   - [DescriptorHeap] and [Resource] are borrowed host objects that the
//     controller only references.
//
// The enums follow the D3D12 variable-rate shading model ([Tier],
// [ShadingRate], [Combiner], [ResourceState]) because it is the most explicit
// of the native APIs; backends for other APIs translate from it.
//
// # Architecture
//
//	               +-----------------+
//	               |       vrs       |
//	               |  (Controller)   |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |     gpucore     |
//	               | Device, Cmdlist |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|    recording    |          |  backend/wgpu   |
//	| (trace / tests) |          |  (hal.Device)   |
//	+-----------------+          +-----------------+
//
// # Ownership
//
// Objects returned by [Device] ([RootSignature], [PipelineState]) belong to
// the caller that created them and must be released exactly once. Devices,
// heaps, resources and command lists handed to the controller are borrowed.
//
// # Root signatures
//
// Root signature layouts are described with [RootSignatureDesc] and turned
// into an opaque blob by [SerializeRootSignature] before reaching the device,
// mirroring the serialize-then-create flow of D3D12. Backends recover the
// layout with [DeserializeRootSignature].
package gpucore
