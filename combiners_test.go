package vrs

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/recording"
)

func TestCombinerPresets(t *testing.T) {
	tests := []struct {
		name string
		op   func(*Controller, *Config) error
		want Combiners
	}{
		{"screen space", (*Controller).SetScreenSpaceCombiners, Combiners{CombinerPassthrough, CombinerOverride}},
		{"hero asset", (*Controller).SetHeroAssetCombiners, Combiners{CombinerPassthrough, CombinerPassthrough}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.initialize(t)
			f.cfg.BaseShadingRate = ShadingRate2x2

			if err := tt.op(f.ctrl, &f.cfg); err != nil {
				t.Fatalf("failed: %v", err)
			}
			base, pair, ok := f.cl.ShadingRate()
			if !ok || base != ShadingRate2x2 || pair != tt.want {
				t.Errorf("ShadingRate() = %v %v, want 2x2 %v", base, pair, tt.want)
			}
			if f.cl.Len() != 1 {
				t.Errorf("recorded %d commands, want 1", f.cl.Len())
			}
		})
	}
}

func TestSetCustomCombiners(t *testing.T) {
	f := newFixture(t, recording.WithTier(gpucore.Tier2), recording.WithTileSize(8), recording.WithSumCombiner(true))
	f.initialize(t)

	all := []Combiner{CombinerPassthrough, CombinerOverride, CombinerMin, CombinerMax, CombinerSum}
	for _, c1 := range all {
		for _, c2 := range all {
			if err := f.ctrl.SetCustomCombiners(&f.cfg, c1, c2); err != nil {
				t.Fatalf("SetCustomCombiners(%v, %v) failed: %v", c1, c2, err)
			}
			if _, pair, _ := f.cl.ShadingRate(); pair != (Combiners{c1, c2}) {
				t.Errorf("SetCustomCombiners(%v, %v) recorded %v", c1, c2, pair)
			}
		}
	}
}

func TestSetCustomCombinersRejectsUndeclared(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	if err := f.ctrl.SetCustomCombiners(&f.cfg, CombinerOverride, Combiner(7)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("undeclared combiner = %v, want ErrInvalidArgument", err)
	}
	f.cfg.BaseShadingRate = gpucore.MakeShadingRate(gpucore.AxisRate4X, gpucore.AxisRate1X)
	if err := f.ctrl.SetScreenSpaceCombiners(&f.cfg); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("undeclared base rate = %v, want ErrInvalidArgument", err)
	}
	if f.cl.Len() != 0 {
		t.Errorf("rejected calls recorded:\n%s", f.cl)
	}
}

func TestCombinersOnTier1(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	// A tier-1 snapshot still allows combiners but not mask operations.
	f.ctrl.caps.Tier = gpucore.Tier1
	if err := f.ctrl.SetHeroAssetCombiners(&f.cfg); err != nil {
		t.Errorf("SetHeroAssetCombiners on tier1 = %v", err)
	}
	if err := f.ctrl.ApplyMask(&f.cfg); !errors.Is(err, ErrNotSupported) {
		t.Errorf("ApplyMask on tier1 = %v, want ErrNotSupported", err)
	}
}

func TestCombinerWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	f := newFixture(t)
	f.ctrl = NewController(WithShaderLibrary(stubLibrary()), WithLogger(logger))
	f.initialize(t)

	if err := f.ctrl.SetCustomCombiners(&f.cfg, CombinerPassthrough, CombinerSum); err != nil {
		t.Fatalf("SetCustomCombiners failed: %v", err)
	}
	if !strings.Contains(buf.String(), "sum combiner") {
		t.Errorf("missing sum combiner warning, log: %q", buf.String())
	}
	if !strings.Contains(buf.String(), f.ctrl.ID().String()) {
		t.Errorf("log records do not carry the controller ID: %q", buf.String())
	}

	buf.Reset()
	f.cfg.BaseShadingRate = ShadingRate4x4
	if err := f.ctrl.SetScreenSpaceCombiners(&f.cfg); err != nil {
		t.Fatalf("SetScreenSpaceCombiners failed: %v", err)
	}
	if !strings.Contains(buf.String(), "additional shading rates") {
		t.Errorf("missing additional-rates warning, log: %q", buf.String())
	}
}
