package vrs

import (
	"log/slog"

	"github.com/gogpu/vrs/gpucore"
)

// Probe queries the device's variable-rate shading support.
//
// The tiered options query and the combiner/mesh-shader extension query are
// independent: a failed extension query leaves SumCombiner and
// MeshShaderPerPrimitive false without affecting the tier, and a failed
// options query reports TierNotSupported. Probe itself only fails for a nil
// device. Callers that need the mask pipeline must check
// [Capabilities.Tier2].
func Probe(device gpucore.Device) (Capabilities, error) {
	return probe(device, Logger())
}

func probe(device gpucore.Device, log *slog.Logger) (Capabilities, error) {
	if device == nil {
		return Capabilities{}, ErrInvalidDevice
	}

	caps := Capabilities{RootSignatureVersion: gpucore.RootSignatureVersion1_0}

	opts, err := device.QueryShadingRateOptions()
	if err != nil {
		log.Warn("vrs: shading-rate options query failed", "err", err)
	} else {
		caps.Tier = opts.Tier
		if caps.Tier1() {
			caps.AdditionalShadingRates = opts.AdditionalShadingRatesSupported
		}
		if caps.Tier2() {
			caps.TileSize = opts.ShadingRateImageTileSize
		}
	}

	ext, err := device.QueryShadingRateExtensions()
	if err != nil {
		log.Warn("vrs: shading-rate extension query failed", "err", err)
	} else {
		caps.SumCombiner = ext.SumCombinerSupported
		caps.MeshShaderPerPrimitive = ext.MeshShaderPerPrimitiveShadingRateSupported
	}

	// Anything but an explicit 1.1 answer falls back to 1.0.
	if v, err := device.QueryRootSignatureVersion(); err == nil && v == gpucore.RootSignatureVersion1_1 {
		caps.RootSignatureVersion = v
	}

	log.Debug("vrs: probed device",
		"tier", caps.Tier,
		"tileSize", caps.TileSize,
		"additionalRates", caps.AdditionalShadingRates,
		"sumCombiner", caps.SumCombiner,
		"meshPerPrimitive", caps.MeshShaderPerPrimitive,
		"rootSignature", caps.RootSignatureVersion)

	return caps, nil
}
