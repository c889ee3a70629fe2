package vrs

import (
	"fmt"

	"github.com/gogpu/vrs/gpucore"
)

// Combiner presets.
var (
	// ScreenSpaceCombiners let the mask override the per-draw rate.
	ScreenSpaceCombiners = Combiners{CombinerPassthrough, CombinerOverride}

	// HeroAssetCombiners keep the per-draw rate and ignore the mask.
	HeroAssetCombiners = Combiners{CombinerPassthrough, CombinerPassthrough}
)

// SetScreenSpaceCombiners sets cfg.BaseShadingRate with the
// (Passthrough, Override) pair.
func (c *Controller) SetScreenSpaceCombiners(cfg *Config) error {
	return c.setCombiners(cfg, ScreenSpaceCombiners)
}

// SetHeroAssetCombiners sets cfg.BaseShadingRate with the
// (Passthrough, Passthrough) pair, for draws that must never be coarsened.
func (c *Controller) SetHeroAssetCombiners(cfg *Config) error {
	return c.setCombiners(cfg, HeroAssetCombiners)
}

// SetCustomCombiners sets cfg.BaseShadingRate with the pair (c1, c2).
// Values other than the declared combiners fail with ErrInvalidArgument.
func (c *Controller) SetCustomCombiners(cfg *Config, c1, c2 Combiner) error {
	return c.setCombiners(cfg, Combiners{c1, c2})
}

func (c *Controller) setCombiners(cfg *Config, pair Combiners) error {
	if err := c.precheck(cfg, gpucore.Tier1, needCommandList); err != nil {
		return err
	}
	if !pair.Valid() {
		return fmt.Errorf("%w: combiners %s/%s", ErrInvalidArgument, pair[0], pair[1])
	}
	if !cfg.BaseShadingRate.Valid() {
		return fmt.Errorf("%w: base shading rate %s", ErrInvalidArgument, cfg.BaseShadingRate)
	}

	log := c.logger()
	if (pair[0] == CombinerSum || pair[1] == CombinerSum) && !c.caps.SumCombiner {
		log.Warn("vrs: sum combiner requested but not reported by the device")
	}
	if cfg.BaseShadingRate.Additional() && !c.caps.AdditionalShadingRates {
		log.Warn("vrs: base rate needs additional shading rates", "rate", cfg.BaseShadingRate)
	}

	cfg.CommandList.RSSetShadingRate(cfg.BaseShadingRate, pair)
	log.Debug("vrs: shading rate", "base", cfg.BaseShadingRate, "combiners", pair)
	return nil
}
