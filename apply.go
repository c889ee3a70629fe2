package vrs

import "github.com/gogpu/vrs/gpucore"

// ApplyMask binds the mask buffer as the shading-rate image for the draws
// that follow in cfg.CommandList. When cfg.Enabled is false it does nothing
// and returns nil before any other check.
func (c *Controller) ApplyMask(cfg *Config) error {
	if cfg != nil && !cfg.Enabled {
		return nil
	}
	if err := c.precheck(cfg, gpucore.Tier2, needCommandList|needMaskBuffer); err != nil {
		return err
	}
	cfg.CommandList.RSSetShadingRateImage(cfg.MaskBuffer)
	return nil
}

// ResetMask unbinds the shading-rate image. Subsequent draws use only the
// per-draw rate and combiners.
func (c *Controller) ResetMask(cfg *Config) error {
	if err := c.precheck(cfg, gpucore.Tier2, needCommandList); err != nil {
		return err
	}
	cfg.CommandList.RSSetShadingRateImage(nil)
	return nil
}
