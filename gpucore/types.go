package gpucore

import (
	"fmt"
	"strings"
)

// Tier is the variable-rate shading capability level of a device.
type Tier uint8

// Tier values.
const (
	// TierNotSupported means the device cannot vary the shading rate.
	TierNotSupported Tier = 0

	// Tier1 supports per-draw shading rates and combiners.
	Tier1 Tier = 1

	// Tier2 adds screen-space shading-rate images and per-primitive rates.
	Tier2 Tier = 2
)

// String returns a short name for the tier.
func (t Tier) String() string {
	switch t {
	case TierNotSupported:
		return "not-supported"
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// AxisShadingRate is the shading rate along a single screen axis.
type AxisShadingRate uint8

// Axis rates.
const (
	AxisRate1X AxisShadingRate = 0x0
	AxisRate2X AxisShadingRate = 0x1
	AxisRate4X AxisShadingRate = 0x2
)

// Pixels returns how many pixels along the axis share one shading sample.
func (a AxisShadingRate) Pixels() uint32 {
	return 1 << a
}

// ShadingRate is a coarse-pixel size. The encoding packs the horizontal axis
// rate in bits 2-3 and the vertical axis rate in bits 0-1.
type ShadingRate uint8

// Shading rates supported by the pipeline. 2x4, 4x2 and 4x4 require the
// device to report additional shading rates.
const (
	ShadingRate1x1 ShadingRate = 0x0
	ShadingRate1x2 ShadingRate = 0x1
	ShadingRate2x1 ShadingRate = 0x4
	ShadingRate2x2 ShadingRate = 0x5
	ShadingRate2x4 ShadingRate = 0x6
	ShadingRate4x2 ShadingRate = 0x9
	ShadingRate4x4 ShadingRate = 0xa
)

var shadingRateNames = map[ShadingRate]string{
	ShadingRate1x1: "1x1",
	ShadingRate1x2: "1x2",
	ShadingRate2x1: "2x1",
	ShadingRate2x2: "2x2",
	ShadingRate2x4: "2x4",
	ShadingRate4x2: "4x2",
	ShadingRate4x4: "4x4",
}

// MakeShadingRate packs two axis rates into a ShadingRate.
func MakeShadingRate(x, y AxisShadingRate) ShadingRate {
	return ShadingRate(x<<2 | y)
}

// Axes unpacks the horizontal and vertical axis rates.
func (r ShadingRate) Axes() (x, y AxisShadingRate) {
	return AxisShadingRate(r>>2) & 0x3, AxisShadingRate(r) & 0x3
}

// Valid reports whether r is one of the declared shading rates.
func (r ShadingRate) Valid() bool {
	_, ok := shadingRateNames[r]
	return ok
}

// Additional reports whether r is only available on devices that expose
// additional shading rates.
func (r ShadingRate) Additional() bool {
	return r == ShadingRate2x4 || r == ShadingRate4x2 || r == ShadingRate4x4
}

// String returns the rate as "WxH".
func (r ShadingRate) String() string {
	if s, ok := shadingRateNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ShadingRate(0x%x)", uint8(r))
}

// ParseShadingRate parses a rate written as "WxH" (for example "2x2").
func ParseShadingRate(s string) (ShadingRate, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for r, name := range shadingRateNames {
		if name == want {
			return r, nil
		}
	}
	return 0, fmt.Errorf("gpucore: unknown shading rate %q", s)
}

// Combiner selects how two shading-rate inputs are merged.
type Combiner uint8

// Combiner values.
const (
	// CombinerPassthrough keeps the previous rate and ignores the new one.
	CombinerPassthrough Combiner = 0
	// CombinerOverride replaces the previous rate with the new one.
	CombinerOverride Combiner = 1
	// CombinerMin keeps the finer of the two rates.
	CombinerMin Combiner = 2
	// CombinerMax keeps the coarser of the two rates.
	CombinerMax Combiner = 3
	// CombinerSum adds the two rates. Requires the sum combiner extension.
	CombinerSum Combiner = 4
)

// Valid reports whether c is one of the declared combiners.
func (c Combiner) Valid() bool {
	return c <= CombinerSum
}

// String returns the combiner name.
func (c Combiner) String() string {
	switch c {
	case CombinerPassthrough:
		return "passthrough"
	case CombinerOverride:
		return "override"
	case CombinerMin:
		return "min"
	case CombinerMax:
		return "max"
	case CombinerSum:
		return "sum"
	}
	return fmt.Sprintf("Combiner(%d)", uint8(c))
}

// Combiners is the pair applied after the per-draw rate: the first merges
// the per-primitive rate, the second merges the screen-space image.
type Combiners [2]Combiner

// Valid reports whether both combiners are declared values.
func (c Combiners) Valid() bool {
	return c[0].Valid() && c[1].Valid()
}

// ResourceState is the usage state a resource is transitioned between.
type ResourceState uint32

// Resource states used by the shading-rate pipeline.
const (
	ResourceStateCommon            ResourceState = 0
	ResourceStateUnorderedAccess   ResourceState = 0x8
	ResourceStateShadingRateSource ResourceState = 0x1000000
)

// String returns the state name.
func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "common"
	case ResourceStateUnorderedAccess:
		return "unordered-access"
	case ResourceStateShadingRateSource:
		return "shading-rate-source"
	}
	return fmt.Sprintf("ResourceState(0x%x)", uint32(s))
}

// ResourceBarrier is a state transition of a single resource.
type ResourceBarrier struct {
	Resource Resource
	Before   ResourceState
	After    ResourceState
}

// Transition builds a transition barrier.
func Transition(r Resource, before, after ResourceState) ResourceBarrier {
	return ResourceBarrier{Resource: r, Before: before, After: after}
}

// DescriptorHandle addresses a descriptor in a shader-visible heap.
// Ptr is a slot index relative to the start of the heap.
type DescriptorHandle struct {
	Ptr uint64
}

// Offset returns the handle n descriptors further into the heap.
func (h DescriptorHandle) Offset(n uint32) DescriptorHandle {
	return DescriptorHandle{Ptr: h.Ptr + uint64(n)}
}

// ShadingRateOptions is the answer to the tiered VRS feature query.
type ShadingRateOptions struct {
	Tier                            Tier
	AdditionalShadingRatesSupported bool
	ShadingRateImageTileSize        uint32
}

// ShadingRateExtensions is the answer to the combiner/mesh-shader feature query.
type ShadingRateExtensions struct {
	SumCombinerSupported                       bool
	MeshShaderPerPrimitiveShadingRateSupported bool
}

// RootSignatureVersion identifies the root signature serialization format.
type RootSignatureVersion uint8

// Root signature versions.
const (
	RootSignatureVersion1_0 RootSignatureVersion = 1
	RootSignatureVersion1_1 RootSignatureVersion = 2
)

// String returns the version as "1.0" or "1.1".
func (v RootSignatureVersion) String() string {
	switch v {
	case RootSignatureVersion1_0:
		return "1.0"
	case RootSignatureVersion1_1:
		return "1.1"
	}
	return fmt.Sprintf("RootSignatureVersion(%d)", uint8(v))
}
