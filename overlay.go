package vrs

import (
	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/shaders"
)

// debugConstants are the root constants of the overlay program.
type debugConstants struct {
	NativeWidth   uint32
	NativeHeight  uint32
	UpscaleWidth  uint32
	UpscaleHeight uint32
	TileSize      uint32
	DrawGrid      bool
}

func (d debugConstants) pack() []uint32 {
	return []uint32{
		d.NativeWidth,
		d.NativeHeight,
		d.UpscaleWidth,
		d.UpscaleHeight,
		d.TileSize,
		b2u(d.DrawGrid),
	}
}

// DebugOverlay records the overlay pass that tints each upscaled pixel by
// its tile's shading rate and optionally draws the tile grid.
//
// It runs only when both cfg.Enabled and cfg.DebugOverlay are set; otherwise
// it records nothing and returns nil. The dispatch covers one work group
// per upscaled pixel.
func (c *Controller) DebugOverlay(cfg *Config) error {
	if err := c.precheck(cfg, gpucore.Tier2, needCommandList|needMaskBuffer|needHeap|needDevice); err != nil {
		return err
	}
	if !cfg.Enabled || !cfg.DebugOverlay {
		return nil
	}

	constants := debugConstants{
		NativeWidth:   cfg.BufferWidth,
		NativeHeight:  cfg.BufferHeight,
		UpscaleWidth:  cfg.UpscaleWidth,
		UpscaleHeight: cfg.UpscaleHeight,
		TileSize:      c.caps.TileSize,
		DrawGrid:      cfg.DebugGrid,
	}.pack()

	cl := cfg.CommandList
	cl.ResourceBarrier(gpucore.Transition(cfg.MaskBuffer,
		gpucore.ResourceStateShadingRateSource, gpucore.ResourceStateUnorderedAccess))
	cl.SetDescriptorHeaps(cfg.UAVHeap)
	cl.SetComputeRootSignature(c.objects.debugRootSignature)
	cl.SetComputeRoot32BitConstants(constantsParameter, constants, 0)
	cl.SetComputeRootDescriptorTable(tableParameter, cfg.UAVHeap.GPUDescriptorHandleForHeapStart())
	cl.SetPipelineState(c.objects.pipelines[shaders.Debug])
	cl.Dispatch(cfg.UpscaleWidth, cfg.UpscaleHeight, 1)
	cl.ResourceBarrier(gpucore.Transition(cfg.MaskBuffer,
		gpucore.ResourceStateUnorderedAccess, gpucore.ResourceStateShadingRateSource))

	c.logger().Debug("vrs: overlay dispatch", "width", cfg.UpscaleWidth, "height", cfg.UpscaleHeight, "grid", cfg.DebugGrid)
	return nil
}
