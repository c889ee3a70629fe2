package vrs

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/recording"
)

func TestMaskGrid(t *testing.T) {
	tests := []struct {
		w, h, tile uint32
		x, y, z    uint32
	}{
		{1920, 1080, 8, 240, 135, 1},
		{1920, 1080, 16, 120, 68, 1},
		{1, 1, 8, 1, 1, 1},
		{0, 0, 8, 0, 0, 1},
		{17, 9, 8, 3, 2, 1},
		{math.MaxUint32, 16, 16, 268435456, 1, 1},
		{1920, 1080, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		x, y, z := MaskGrid(tt.w, tt.h, tt.tile)
		if x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("MaskGrid(%d, %d, %d) = (%d, %d, %d), want (%d, %d, %d)", tt.w, tt.h, tt.tile, x, y, z, tt.x, tt.y, tt.z)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	if ceilDiv[uint32](1920, 8) != 240 || ceilDiv[uint32](1081, 8) != 136 {
		t.Error("ceilDiv(uint32) wrong")
	}
	if ceilDiv[uint32](math.MaxUint32, 2) != 1<<31 {
		t.Error("ceilDiv overflowed")
	}
	if ceilDiv(5, 2) != 3 || ceilDiv(4, 2) != 2 {
		t.Error("ceilDiv(int) wrong")
	}
}

func TestMaskConstantsPacking(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferWidth, cfg.BufferHeight = 1920, 1080
	cfg.UpscaleWidth, cfg.UpscaleHeight = 3840, 2160
	cfg.WeberFechnerMode = true
	cfg.UseUpscaleMotionVectors = true

	got := newMaskConstants(&cfg, 8).pack()
	want := []uint32{
		1920, 1080, 8,
		math.Float32bits(0.50),
		math.Float32bits(0.02),
		math.Float32bits(2.13),
		math.Float32bits(1.0),
		1, // Weber-Fechner mode
		0, // motion vectors
		1, // quarter rate allowed
		3840, 2160,
		1, // upscaled motion vectors
	}
	if len(got) != maskConstantCount {
		t.Fatalf("packed %d constants, want %d", len(got), maskConstantCount)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pack() = %v, want %v", got, want)
	}
}

// TestComputeMaskReferenceFrame checks the full recording for a tier-2,
// 8x8-tile device rendering 1920x1080 upscaled to 3840x2160.
func TestComputeMaskReferenceFrame(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	if err := f.ctrl.ComputeMask(&f.cfg); err != nil {
		t.Fatalf("ComputeMask failed: %v", err)
	}
	if err := f.cl.Err(); err != nil {
		t.Fatalf("recording errors: %v", err)
	}

	cmds := f.cl.Commands()
	want := []recording.CommandType{
		recording.CmdResourceBarrier,
		recording.CmdSetDescriptorHeaps,
		recording.CmdSetComputeRootSignature,
		recording.CmdSetComputeRoot32BitConstants,
		recording.CmdSetComputeRootDescriptorTable,
		recording.CmdSetPipelineState,
		recording.CmdDispatch,
		recording.CmdResourceBarrier,
	}
	if len(cmds) != len(want) {
		t.Fatalf("recorded %d commands, want %d:\n%s", len(cmds), len(want), f.cl)
	}
	for i, c := range cmds {
		if c.Type() != want[i] {
			t.Errorf("command %d = %v, want %v", i, c.Type(), want[i])
		}
	}

	enter := cmds[0].(recording.ResourceBarrierCommand).Barriers[0]
	if enter.Resource != gpucore.Resource(f.mask) || enter.Before != gpucore.ResourceStateShadingRateSource || enter.After != gpucore.ResourceStateUnorderedAccess {
		t.Errorf("entry barrier = %+v", enter)
	}
	exit := cmds[7].(recording.ResourceBarrierCommand).Barriers[0]
	if exit.Before != gpucore.ResourceStateUnorderedAccess || exit.After != gpucore.ResourceStateShadingRateSource {
		t.Errorf("exit barrier = %+v", exit)
	}

	if rs := cmds[2].(recording.SetComputeRootSignatureCommand).RootSignature; rs != f.ctrl.objects.rootSignature {
		t.Error("mask pass bound the wrong root signature")
	}
	constants := cmds[3].(recording.SetComputeRoot32BitConstantsCommand)
	if constants.Param != 0 || constants.DestOffset != 0 || len(constants.Values) != 13 {
		t.Errorf("constants = %+v", constants)
	}
	if constants.Values[2] != 8 {
		t.Errorf("tile size constant = %d, want 8", constants.Values[2])
	}
	table := cmds[4].(recording.SetComputeRootDescriptorTableCommand)
	if table.Param != 1 || table.Base != f.heap.GPUDescriptorHandleForHeapStart() {
		t.Errorf("descriptor table = %+v", table)
	}

	d := f.cl.Dispatches()
	if len(d) != 1 || d[0] != (recording.DispatchCommand{X: 240, Y: 135, Z: 1}) {
		t.Errorf("Dispatches() = %v, want [{240 135 1}]", d)
	}
	if s, _ := f.cl.ResourceState(f.mask); s != gpucore.ResourceStateShadingRateSource {
		t.Errorf("mask left in %s", s)
	}

	if err := f.ctrl.ResetMask(&f.cfg); err != nil {
		t.Fatalf("ResetMask failed: %v", err)
	}
	last := f.cl.Commands()[f.cl.Len()-1]
	if img, ok := last.(recording.RSSetShadingRateImageCommand); !ok || img.Image != nil {
		t.Errorf("last command = %v, want an unbind", last)
	}

	if err := f.ctrl.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := f.ctrl.ComputeMask(&f.cfg); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ComputeMask after Release = %v, want ErrNotInitialized", err)
	}
}

func TestComputeMaskDisabled(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.cfg.Enabled = false

	if err := f.ctrl.ComputeMask(&f.cfg); err != nil {
		t.Fatalf("ComputeMask failed: %v", err)
	}
	if f.cl.Len() != 0 {
		t.Errorf("disabled ComputeMask recorded:\n%s", f.cl)
	}
}

func TestComputeMaskPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture)
		want   error
	}{
		{"nil config", nil, ErrInvalidArgument},
		{"nil command list", func(f *fixture) { f.cfg.CommandList = nil }, ErrInvalidArgument},
		{"nil mask buffer", func(f *fixture) { f.cfg.MaskBuffer = nil }, ErrInvalidArgument},
		{"nil heap", func(f *fixture) { f.cfg.UAVHeap = nil }, ErrInvalidArgument},
		{"nil device", func(f *fixture) { f.cfg.Device = nil }, ErrInvalidDevice},
		// Argument errors win over device errors.
		{"nil heap and device", func(f *fixture) { f.cfg.UAVHeap, f.cfg.Device = nil, nil }, ErrInvalidArgument},
		// Disabled does not bypass the checks.
		{"disabled without mask", func(f *fixture) { f.cfg.Enabled, f.cfg.MaskBuffer = false, nil }, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.initialize(t)

			cfg := &f.cfg
			if tt.mutate == nil {
				cfg = nil
			} else {
				tt.mutate(f)
			}
			if err := f.ctrl.ComputeMask(cfg); !errors.Is(err, tt.want) {
				t.Errorf("ComputeMask = %v, want %v", err, tt.want)
			}
			if err := f.ctrl.DebugOverlay(cfg); !errors.Is(err, tt.want) {
				t.Errorf("DebugOverlay = %v, want %v", err, tt.want)
			}
			if f.cl.Len() != 0 {
				t.Errorf("failed precondition recorded:\n%s", f.cl)
			}
		})
	}
}

func TestComputeMaskInconsistentTileSize(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	// A re-probe that reports another tile size cannot select a pipeline
	// that was never built.
	f.ctrl.caps.TileSize = 16
	if err := f.ctrl.ComputeMask(&f.cfg); !errors.Is(err, ErrUnsupportedTileSize) {
		t.Errorf("ComputeMask = %v, want ErrUnsupportedTileSize", err)
	}
	f.ctrl.caps.TileSize = 4
	if err := f.ctrl.ComputeMask(&f.cfg); !errors.Is(err, ErrUnsupportedTileSize) {
		t.Errorf("ComputeMask = %v, want ErrUnsupportedTileSize", err)
	}
	if f.cl.Len() != 0 {
		t.Errorf("recorded commands:\n%s", f.cl)
	}
}
