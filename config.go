package vrs

import "github.com/gogpu/vrs/gpucore"

// Config carries the per-frame parameters of every controller call.
//
// Config is owned by the caller and may change between calls. The Device,
// UAVHeap, MaskBuffer and CommandList references are borrowed for the
// duration of a single call; Device must stay the device the controller
// was initialized with.
type Config struct {
	// BaseShadingRate is the per-draw rate set by the combiner operations.
	BaseShadingRate ShadingRate

	// SensitivityThreshold is the luminance contrast above which a tile is
	// shaded at full rate.
	SensitivityThreshold float32

	// QuarterRateShadingModifier scales contrast when testing for 4x rates.
	QuarterRateShadingModifier float32

	// EnvironmentLuminance is added to the Weber-Fechner denominator.
	EnvironmentLuminance float32

	// AllowQuarterRateShading enables 4x axis rates.
	AllowQuarterRateShading bool

	// WeberFechnerMode makes contrast relative to local luminance.
	WeberFechnerMode bool

	// WeberFechnerConstant scales local luminance in Weber-Fechner mode.
	WeberFechnerConstant float32

	// UseMotionVectors raises the threshold in moving tiles.
	UseMotionVectors bool

	// UseUpscaleMotionVectors reads motion from the upscaled buffer.
	UseUpscaleMotionVectors bool

	// DebugOverlay enables the overlay pass.
	DebugOverlay bool

	// DebugGrid draws tile boundaries in the overlay.
	DebugGrid bool

	// Enabled turns the feature on. When false, ComputeMask, DebugOverlay
	// and ApplyMask succeed without recording anything.
	Enabled bool

	// BufferWidth and BufferHeight are the native render resolution.
	BufferWidth  uint32
	BufferHeight uint32

	// UpscaleWidth and UpscaleHeight are the output resolution.
	UpscaleWidth  uint32
	UpscaleHeight uint32

	Device      gpucore.Device
	UAVHeap     gpucore.DescriptorHeap
	MaskBuffer  gpucore.Resource
	CommandList gpucore.CommandList
}

// Tuning defaults.
const (
	DefaultSensitivityThreshold       = 0.50
	DefaultQuarterRateShadingModifier = 2.13
	DefaultEnvironmentLuminance       = 0.02
	DefaultWeberFechnerConstant       = 1.0
)

// DefaultConfig returns a Config with the reference tuning and no
// dimensions or GPU references.
func DefaultConfig() Config {
	return Config{
		BaseShadingRate:            ShadingRate1x1,
		SensitivityThreshold:       DefaultSensitivityThreshold,
		QuarterRateShadingModifier: DefaultQuarterRateShadingModifier,
		EnvironmentLuminance:       DefaultEnvironmentLuminance,
		AllowQuarterRateShading:    true,
		WeberFechnerConstant:       DefaultWeberFechnerConstant,
		Enabled:                    true,
	}
}
