package gpucore

// Device is the host graphics device as seen by the controller.
//
// Implementations must be comparable (pointer receivers are the norm): the
// controller compares the device passed on each frame with the one it was
// initialized with.
type Device interface {
	// === Capabilities ===

	// QueryShadingRateOptions reports the VRS tier, the shading-rate image
	// tile size and whether additional (2x4, 4x2, 4x4) rates are available.
	QueryShadingRateOptions() (ShadingRateOptions, error)

	// QueryShadingRateExtensions reports sum-combiner and per-primitive
	// mesh-shader rate support. Failure leaves both unsupported and does not
	// affect QueryShadingRateOptions.
	QueryShadingRateExtensions() (ShadingRateExtensions, error)

	// QueryRootSignatureVersion reports the highest root signature version
	// the device accepts.
	QueryRootSignatureVersion() (RootSignatureVersion, error)

	// === Pipeline objects ===

	// CreateRootSignature creates a root signature from a blob produced by
	// SerializeRootSignature.
	CreateRootSignature(blob []byte) (RootSignature, error)

	// CreateComputePipelineState compiles a compute pipeline.
	CreateComputePipelineState(desc *ComputePipelineDesc) (PipelineState, error)
}

// CommandList records GPU work. Calls only append commands; nothing executes
// until the host submits the list.
type CommandList interface {
	// ResourceBarrier records state transitions.
	ResourceBarrier(barriers ...ResourceBarrier)

	// SetDescriptorHeaps binds shader-visible descriptor heaps.
	SetDescriptorHeaps(heaps ...DescriptorHeap)

	// SetComputeRootSignature binds the compute root signature.
	SetComputeRootSignature(rs RootSignature)

	// SetComputeRoot32BitConstants uploads inline constants into the root
	// parameter at index param, starting at destOffset 32-bit values.
	SetComputeRoot32BitConstants(param uint32, values []uint32, destOffset uint32)

	// SetComputeRootDescriptorTable binds the descriptor table at index
	// param to the range starting at base.
	SetComputeRootDescriptorTable(param uint32, base DescriptorHandle)

	// SetPipelineState binds a compiled pipeline.
	SetPipelineState(pso PipelineState)

	// Dispatch records a compute dispatch of x*y*z work groups.
	Dispatch(x, y, z uint32)

	// RSSetShadingRate sets the per-draw base rate and the combiner pair.
	RSSetShadingRate(base ShadingRate, combiners Combiners)

	// RSSetShadingRateImage binds the screen-space shading-rate image.
	// A nil image unbinds it.
	RSSetShadingRateImage(image Resource)
}

// DescriptorHeap is a shader-visible heap of resource views.
type DescriptorHeap interface {
	// GPUDescriptorHandleForHeapStart returns the handle of the first slot.
	GPUDescriptorHandleForHeapStart() DescriptorHandle
}

// Resource is a GPU resource owned by the host.
type Resource interface {
	// Label returns a debug name for the resource.
	Label() string
}
