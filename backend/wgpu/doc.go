// Package wgpu runs the vrs controller on gogpu/wgpu.
//
// The package adapts a hal.Device and hal.Queue to the gpucore interfaces the
// controller records into:
//
//   - Root signature blobs become a bind group layout and a pipeline layout.
//     Root constants map to a uniform buffer at binding 0 and the UAV ranges
//     of the descriptor table map, in order, to storage buffers at bindings
//     1..n. CBV ranges have no WebGPU counterpart and are skipped.
//   - Pipeline states are SPIR-V compute pipelines.
//   - A CommandList wraps a hal command encoder. Each Dispatch uploads the
//     current root constants, builds a bind group from the descriptor table
//     and records one compute pass.
//   - Buffers are storage buffers and can be placed in a DescriptorHeap.
//
// WebGPU has no variable-rate shading query, so the capabilities a Device
// reports come from its options. The shading-rate image is consumed by the
// host's own render shaders; CommandList.ShadingRateImage and
// CommandList.ShadingRate expose the bound state for them.
//
// Example:
//
//	dev, err := wgpu.NewDevice(halDevice, halQueue, wgpu.WithTileSize(16))
//	list, err := dev.NewCommandList("frame")
//	cfg.Device, cfg.CommandList = dev, list
//	ctrl.ComputeMask(&cfg)
//	err = list.Submit(time.Second)
package wgpu
