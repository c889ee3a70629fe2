package vrs

import "github.com/gogpu/vrs/gpucore"

// Boundary types re-exported for callers that only import vrs.
type (
	// ShadingRate is a coarse-pixel size such as 2x2.
	ShadingRate = gpucore.ShadingRate

	// Combiner merges two shading-rate inputs.
	Combiner = gpucore.Combiner

	// Combiners is the combiner pair applied after the per-draw rate.
	Combiners = gpucore.Combiners

	// Tier is the variable-rate shading capability level.
	Tier = gpucore.Tier
)

// Shading rates.
const (
	ShadingRate1x1 = gpucore.ShadingRate1x1
	ShadingRate1x2 = gpucore.ShadingRate1x2
	ShadingRate2x1 = gpucore.ShadingRate2x1
	ShadingRate2x2 = gpucore.ShadingRate2x2
	ShadingRate2x4 = gpucore.ShadingRate2x4
	ShadingRate4x2 = gpucore.ShadingRate4x2
	ShadingRate4x4 = gpucore.ShadingRate4x4
)

// Combiners.
const (
	CombinerPassthrough = gpucore.CombinerPassthrough
	CombinerOverride    = gpucore.CombinerOverride
	CombinerMin         = gpucore.CombinerMin
	CombinerMax         = gpucore.CombinerMax
	CombinerSum         = gpucore.CombinerSum
)

// Capabilities is a snapshot of the device's variable-rate shading support.
// It is produced by [Probe] and never changes afterwards.
type Capabilities struct {
	// Tier is the reported shading-rate tier.
	Tier Tier

	// TileSize is the shading-rate image tile size in pixels.
	// Zero unless Tier is at least Tier2.
	TileSize uint32

	// AdditionalShadingRates reports 2x4, 4x2 and 4x4 support.
	// False unless Tier is at least Tier1.
	AdditionalShadingRates bool

	// SumCombiner reports support for CombinerSum.
	SumCombiner bool

	// MeshShaderPerPrimitive reports per-primitive rates from mesh shaders.
	MeshShaderPerPrimitive bool

	// RootSignatureVersion is the root signature format used for this device.
	RootSignatureVersion gpucore.RootSignatureVersion
}

// Tier1 reports whether per-draw rates and combiners are available.
func (c Capabilities) Tier1() bool {
	return c.Tier >= gpucore.Tier1
}

// Tier2 reports whether screen-space shading-rate images are available.
func (c Capabilities) Tier2() bool {
	return c.Tier >= gpucore.Tier2
}

// Supported reports whether a controller can be initialized on the device:
// tier 2 with a tile size that has a mask program.
func (c Capabilities) Supported() bool {
	return supportError(c) == nil
}
