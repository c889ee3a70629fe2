package vrs

import (
	"reflect"
	"testing"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/recording"
	"github.com/gogpu/vrs/shaders"
)

func TestDebugOverlayInactive(t *testing.T) {
	tests := []struct {
		name             string
		enabled, overlay bool
	}{
		{"disabled", false, true},
		{"overlay off", true, false},
		{"both off", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.initialize(t)
			f.cfg.Enabled, f.cfg.DebugOverlay = tt.enabled, tt.overlay

			if err := f.ctrl.DebugOverlay(&f.cfg); err != nil {
				t.Fatalf("DebugOverlay failed: %v", err)
			}
			if f.cl.Len() != 0 {
				t.Errorf("inactive overlay recorded:\n%s", f.cl)
			}
		})
	}
}

func TestDebugOverlayRecording(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.cfg.DebugOverlay = true
	f.cfg.DebugGrid = true

	if err := f.ctrl.DebugOverlay(&f.cfg); err != nil {
		t.Fatalf("DebugOverlay failed: %v", err)
	}
	if err := f.cl.Err(); err != nil {
		t.Fatalf("recording errors: %v", err)
	}

	cmds := f.cl.Commands()
	if len(cmds) != 8 {
		t.Fatalf("recorded %d commands, want 8:\n%s", len(cmds), f.cl)
	}
	if cmds[0].Type() != recording.CmdResourceBarrier || cmds[7].Type() != recording.CmdResourceBarrier {
		t.Error("overlay is not bracketed by barriers")
	}
	if rs := cmds[2].(recording.SetComputeRootSignatureCommand).RootSignature; rs != f.ctrl.objects.debugRootSignature {
		t.Error("overlay bound the mask root signature")
	}
	constants := cmds[3].(recording.SetComputeRoot32BitConstantsCommand).Values
	if want := []uint32{1920, 1080, 3840, 2160, 8, 1}; !reflect.DeepEqual(constants, want) {
		t.Errorf("constants = %v, want %v", constants, want)
	}
	if p := cmds[5].(recording.SetPipelineStateCommand).Pipeline; p != f.ctrl.objects.pipelines[shaders.Debug] {
		t.Error("overlay bound the wrong pipeline")
	}
	if d := f.cl.Dispatches(); len(d) != 1 || d[0] != (recording.DispatchCommand{X: 3840, Y: 2160, Z: 1}) {
		t.Errorf("Dispatches() = %v, want [{3840 2160 1}]", d)
	}
	if s, _ := f.cl.ResourceState(f.mask); s != gpucore.ResourceStateShadingRateSource {
		t.Errorf("mask left in %s", s)
	}
}

// A full frame keeps the mask in the shading-rate-source state between
// stages, so binding it never trips the state validation.
func TestFrameSequence(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.cfg.DebugOverlay = true

	steps := []struct {
		name string
		op   func(*Config) error
	}{
		{"ComputeMask", f.ctrl.ComputeMask},
		{"DebugOverlay", f.ctrl.DebugOverlay},
		{"ApplyMask", f.ctrl.ApplyMask},
		{"SetScreenSpaceCombiners", f.ctrl.SetScreenSpaceCombiners},
		{"ResetMask", f.ctrl.ResetMask},
		{"SetHeroAssetCombiners", f.ctrl.SetHeroAssetCombiners},
	}
	for frame := 0; frame < 2; frame++ {
		for _, s := range steps {
			if err := s.op(&f.cfg); err != nil {
				t.Fatalf("frame %d: %s failed: %v", frame, s.name, err)
			}
		}
		f.cl.Execute()
		if err := f.cl.Err(); err != nil {
			t.Fatalf("frame %d recording errors: %v\n%s", frame, err, f.cl)
		}
		f.cl.Reset()
	}
	if f.mask.State() != gpucore.ResourceStateShadingRateSource {
		t.Errorf("mask ended in %s", f.mask.State())
	}
}
