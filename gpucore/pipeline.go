package gpucore

// RootSignature is a compiled root signature.
type RootSignature interface {
	// Release destroys the root signature. It must be called exactly once.
	Release()
}

// PipelineState is a compiled compute pipeline.
type PipelineState interface {
	// Release destroys the pipeline. It must be called exactly once.
	Release()
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// RootSignature is the layout the shader was written against.
	RootSignature RootSignature

	// Bytecode is the compiled compute shader. Its format is agreed between
	// the shader library and the backend (SPIR-V for the bundled shaders).
	Bytecode []byte

	// EntryPoint is the shader entry point. Empty means "main".
	EntryPoint string
}

// Entry returns the entry point name, defaulting to "main".
func (d *ComputePipelineDesc) Entry() string {
	if d.EntryPoint == "" {
		return "main"
	}
	return d.EntryPoint
}
