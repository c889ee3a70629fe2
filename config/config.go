// Package config loads controller tuning from TOML files.
//
// A tuning file holds a single [tuning] table:
//
//	[tuning]
//	base_shading_rate      = "1x1"
//	sensitivity_threshold  = 0.5
//	quarter_rate_modifier  = 2.13
//	environment_luminance  = 0.02
//	allow_quarter_rate     = true
//	weber_fechner          = false
//	weber_fechner_constant = 1.0
//	motion_vectors         = false
//	upscale_motion_vectors = false
//	debug_overlay          = false
//	debug_grid             = false
//	enabled                = true
//
// Keys that are absent keep their defaults; unknown keys are rejected.
// [Watcher] reloads a file whenever it changes on disk.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/gpucore"
)

// ErrInvalidTuning is returned when a tuning value is out of range.
var ErrInvalidTuning = errors.New("config: invalid tuning")

// Tuning is the file form of the tunable fields of vrs.Config.
type Tuning struct {
	BaseShadingRate      string  `toml:"base_shading_rate"`
	SensitivityThreshold float32 `toml:"sensitivity_threshold"`
	QuarterRateModifier  float32 `toml:"quarter_rate_modifier"`
	EnvironmentLuminance float32 `toml:"environment_luminance"`
	AllowQuarterRate     bool    `toml:"allow_quarter_rate"`
	WeberFechner         bool    `toml:"weber_fechner"`
	WeberFechnerConstant float32 `toml:"weber_fechner_constant"`
	MotionVectors        bool    `toml:"motion_vectors"`
	UpscaleMotionVectors bool    `toml:"upscale_motion_vectors"`
	DebugOverlay         bool    `toml:"debug_overlay"`
	DebugGrid            bool    `toml:"debug_grid"`
	Enabled              bool    `toml:"enabled"`
}

type document struct {
	Tuning Tuning `toml:"tuning"`
}

// Default returns the tuning of vrs.DefaultConfig.
func Default() Tuning {
	cfg := vrs.DefaultConfig()
	return FromConfig(&cfg)
}

// FromConfig extracts the tunable fields of cfg.
func FromConfig(cfg *vrs.Config) Tuning {
	return Tuning{
		BaseShadingRate:      cfg.BaseShadingRate.String(),
		SensitivityThreshold: cfg.SensitivityThreshold,
		QuarterRateModifier:  cfg.QuarterRateShadingModifier,
		EnvironmentLuminance: cfg.EnvironmentLuminance,
		AllowQuarterRate:     cfg.AllowQuarterRateShading,
		WeberFechner:         cfg.WeberFechnerMode,
		WeberFechnerConstant: cfg.WeberFechnerConstant,
		MotionVectors:        cfg.UseMotionVectors,
		UpscaleMotionVectors: cfg.UseUpscaleMotionVectors,
		DebugOverlay:         cfg.DebugOverlay,
		DebugGrid:            cfg.DebugGrid,
		Enabled:              cfg.Enabled,
	}
}

// Parse decodes a tuning document on top of the defaults and validates it.
func Parse(data []byte) (Tuning, error) {
	doc := document{Tuning: Default()}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Tuning{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := doc.Tuning.Validate(); err != nil {
		return Tuning{}, err
	}
	return doc.Tuning, nil
}

// Load reads and parses a tuning file.
func Load(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("config: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks value ranges: threshold in (0, 1], quarter-rate modifier
// at least 1, non-negative environment luminance, positive Weber-Fechner
// constant and a known base rate.
func (t Tuning) Validate() error {
	var errs []error
	if _, err := gpucore.ParseShadingRate(t.BaseShadingRate); err != nil {
		errs = append(errs, fmt.Errorf("%w: base_shading_rate %q", ErrInvalidTuning, t.BaseShadingRate))
	}
	if !(t.SensitivityThreshold > 0 && t.SensitivityThreshold <= 1) {
		errs = append(errs, fmt.Errorf("%w: sensitivity_threshold %v not in (0, 1]", ErrInvalidTuning, t.SensitivityThreshold))
	}
	if !(t.QuarterRateModifier >= 1) {
		errs = append(errs, fmt.Errorf("%w: quarter_rate_modifier %v < 1", ErrInvalidTuning, t.QuarterRateModifier))
	}
	if !(t.EnvironmentLuminance >= 0) {
		errs = append(errs, fmt.Errorf("%w: environment_luminance %v < 0", ErrInvalidTuning, t.EnvironmentLuminance))
	}
	if !(t.WeberFechnerConstant > 0) {
		errs = append(errs, fmt.Errorf("%w: weber_fechner_constant %v <= 0", ErrInvalidTuning, t.WeberFechnerConstant))
	}
	return errors.Join(errs...)
}

// Apply copies the tuning into cfg, leaving dimensions and GPU references
// untouched.
func (t Tuning) Apply(cfg *vrs.Config) error {
	if err := t.Validate(); err != nil {
		return err
	}
	rate, _ := gpucore.ParseShadingRate(t.BaseShadingRate)

	cfg.BaseShadingRate = rate
	cfg.SensitivityThreshold = t.SensitivityThreshold
	cfg.QuarterRateShadingModifier = t.QuarterRateModifier
	cfg.EnvironmentLuminance = t.EnvironmentLuminance
	cfg.AllowQuarterRateShading = t.AllowQuarterRate
	cfg.WeberFechnerMode = t.WeberFechner
	cfg.WeberFechnerConstant = t.WeberFechnerConstant
	cfg.UseMotionVectors = t.MotionVectors
	cfg.UseUpscaleMotionVectors = t.UpscaleMotionVectors
	cfg.DebugOverlay = t.DebugOverlay
	cfg.DebugGrid = t.DebugGrid
	cfg.Enabled = t.Enabled
	return nil
}

// Marshal encodes the tuning as a document Parse accepts.
func (t Tuning) Marshal() ([]byte, error) {
	return toml.Marshal(document{Tuning: t})
}
