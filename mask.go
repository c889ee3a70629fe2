package vrs

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/shaders"
)

// maskConstants are the root constants of the mask program, in register
// order.
type maskConstants struct {
	Width                   uint32
	Height                  uint32
	TileSize                uint32
	SensitivityThreshold    float32
	EnvironmentLuminance    float32
	QuarterRateModifier     float32
	WeberFechnerConstant    float32
	WeberFechnerMode        bool
	UseMotionVectors        bool
	AllowQuarterRate        bool
	UpscaleWidth            uint32
	UpscaleHeight           uint32
	UseUpscaleMotionVectors bool
}

func newMaskConstants(cfg *Config, tileSize uint32) maskConstants {
	return maskConstants{
		Width:                   cfg.BufferWidth,
		Height:                  cfg.BufferHeight,
		TileSize:                tileSize,
		SensitivityThreshold:    cfg.SensitivityThreshold,
		EnvironmentLuminance:    cfg.EnvironmentLuminance,
		QuarterRateModifier:     cfg.QuarterRateShadingModifier,
		WeberFechnerConstant:    cfg.WeberFechnerConstant,
		WeberFechnerMode:        cfg.WeberFechnerMode,
		UseMotionVectors:        cfg.UseMotionVectors,
		AllowQuarterRate:        cfg.AllowQuarterRateShading,
		UpscaleWidth:            cfg.UpscaleWidth,
		UpscaleHeight:           cfg.UpscaleHeight,
		UseUpscaleMotionVectors: cfg.UseUpscaleMotionVectors,
	}
}

// pack returns the 32-bit words uploaded to the constants parameter.
// Floats are stored as their IEEE-754 bits and booleans as 0 or 1.
func (m maskConstants) pack() []uint32 {
	return []uint32{
		m.Width,
		m.Height,
		m.TileSize,
		math.Float32bits(m.SensitivityThreshold),
		math.Float32bits(m.EnvironmentLuminance),
		math.Float32bits(m.QuarterRateModifier),
		math.Float32bits(m.WeberFechnerConstant),
		b2u(m.WeberFechnerMode),
		b2u(m.UseMotionVectors),
		b2u(m.AllowQuarterRate),
		m.UpscaleWidth,
		m.UpscaleHeight,
		b2u(m.UseUpscaleMotionVectors),
	}
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// ceilDiv returns ceil(a/b) without overflowing for large a.
func ceilDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// MaskGrid returns the work-group grid of the mask dispatch: one group per
// shading-rate tile. A zero tile size yields an empty grid.
func MaskGrid(width, height, tileSize uint32) (x, y, z uint32) {
	if tileSize == 0 {
		return 0, 0, 0
	}
	return ceilDiv(width, tileSize), ceilDiv(height, tileSize), 1
}

// maskPipeline returns the compiled mask program for the stored tile size.
func (c *Controller) maskPipeline() (gpucore.PipelineState, error) {
	perm, err := shaders.ForTileSize(c.caps.TileSize)
	if err != nil || c.objects.pipelines[perm] == nil {
		return nil, fmt.Errorf("%w: %d (initialized for %s)", ErrUnsupportedTileSize, c.caps.TileSize, c.objects.maskPermutation)
	}
	return c.objects.pipelines[perm], nil
}

// ComputeMask records the dispatch that writes the shading-rate mask for
// the current frame.
//
// The mask buffer must be in the shading-rate-source state on entry and is
// left in that state on return. When cfg.Enabled is false ComputeMask
// records nothing and returns nil.
func (c *Controller) ComputeMask(cfg *Config) error {
	if err := c.precheck(cfg, gpucore.Tier2, needCommandList|needMaskBuffer|needHeap|needDevice); err != nil {
		return err
	}
	if !cfg.Enabled {
		return nil
	}
	pso, err := c.maskPipeline()
	if err != nil {
		return err
	}

	tile := c.caps.TileSize
	constants := newMaskConstants(cfg, tile).pack()
	x, y, z := MaskGrid(cfg.BufferWidth, cfg.BufferHeight, tile)

	cl := cfg.CommandList
	cl.ResourceBarrier(gpucore.Transition(cfg.MaskBuffer,
		gpucore.ResourceStateShadingRateSource, gpucore.ResourceStateUnorderedAccess))
	cl.SetDescriptorHeaps(cfg.UAVHeap)
	cl.SetComputeRootSignature(c.objects.rootSignature)
	cl.SetComputeRoot32BitConstants(constantsParameter, constants, 0)
	cl.SetComputeRootDescriptorTable(tableParameter, cfg.UAVHeap.GPUDescriptorHandleForHeapStart())
	cl.SetPipelineState(pso)
	cl.Dispatch(x, y, z)
	cl.ResourceBarrier(gpucore.Transition(cfg.MaskBuffer,
		gpucore.ResourceStateUnorderedAccess, gpucore.ResourceStateShadingRateSource))

	c.logger().Debug("vrs: mask dispatch", "groups", []uint32{x, y, z}, "tileSize", tile)
	return nil
}
