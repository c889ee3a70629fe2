package recording

import (
	"errors"
	"testing"

	"github.com/gogpu/vrs/gpucore"
)

func testBlob(t *testing.T, version gpucore.RootSignatureVersion) []byte {
	t.Helper()
	blob, err := gpucore.SerializeRootSignature(&gpucore.RootSignatureDesc{
		Version:    version,
		Parameters: []gpucore.RootParameter{gpucore.ConstantsParameter(4, 0)},
	})
	if err != nil {
		t.Fatalf("SerializeRootSignature failed: %v", err)
	}
	return blob
}

func TestDeviceQueries(t *testing.T) {
	dev := NewDevice(
		WithTier(gpucore.Tier2),
		WithTileSize(16),
		WithSumCombiner(true),
		WithRootSignatureVersion(gpucore.RootSignatureVersion1_0),
	)

	opts, err := dev.QueryShadingRateOptions()
	if err != nil || opts.Tier != gpucore.Tier2 || opts.ShadingRateImageTileSize != 16 {
		t.Errorf("QueryShadingRateOptions = %+v, %v", opts, err)
	}
	ext, err := dev.QueryShadingRateExtensions()
	if err != nil || !ext.SumCombinerSupported || ext.MeshShaderPerPrimitiveShadingRateSupported {
		t.Errorf("QueryShadingRateExtensions = %+v, %v", ext, err)
	}
	v, err := dev.QueryRootSignatureVersion()
	if err != nil || v != gpucore.RootSignatureVersion1_0 {
		t.Errorf("QueryRootSignatureVersion = %v, %v", v, err)
	}
}

func TestDeviceQueryErrors(t *testing.T) {
	custom := errors.New("boom")
	dev := NewDevice(WithOptionsQueryError(custom), WithExtensionsQueryError(nil), WithVersionQueryError(nil))

	if _, err := dev.QueryShadingRateOptions(); !errors.Is(err, custom) {
		t.Errorf("options error = %v, want %v", err, custom)
	}
	if _, err := dev.QueryShadingRateExtensions(); !errors.Is(err, ErrQueryFailed) {
		t.Errorf("extensions error = %v, want ErrQueryFailed", err)
	}
	if _, err := dev.QueryRootSignatureVersion(); !errors.Is(err, ErrQueryFailed) {
		t.Errorf("version error = %v, want ErrQueryFailed", err)
	}
}

func TestDeviceObjectLifetime(t *testing.T) {
	dev := NewDevice()

	rs, err := dev.CreateRootSignature(testBlob(t, gpucore.RootSignatureVersion1_1))
	if err != nil {
		t.Fatalf("CreateRootSignature failed: %v", err)
	}
	pso, err := dev.CreateComputePipelineState(&gpucore.ComputePipelineDesc{
		Label:         "test",
		RootSignature: rs,
		Bytecode:      []byte{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("CreateComputePipelineState failed: %v", err)
	}
	if got := pso.(*PipelineState).EntryPoint(); got != "main" {
		t.Errorf("EntryPoint() = %q, want main", got)
	}
	if dev.LiveObjects() != 2 {
		t.Errorf("LiveObjects() = %d, want 2", dev.LiveObjects())
	}

	pso.Release()
	rs.Release()
	if dev.LiveObjects() != 0 {
		t.Errorf("LiveObjects() = %d after release, want 0", dev.LiveObjects())
	}
	if err := dev.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	rs.Release()
	if dev.Err() == nil {
		t.Error("double release was not reported")
	}
	if dev.LiveObjects() != 0 {
		t.Errorf("double release changed LiveObjects to %d", dev.LiveObjects())
	}
}

func TestDeviceRejectsInvalidObjects(t *testing.T) {
	dev := NewDevice(WithRootSignatureVersion(gpucore.RootSignatureVersion1_0))

	if _, err := dev.CreateRootSignature([]byte("junk")); !errors.Is(err, gpucore.ErrMalformedRootSignature) {
		t.Errorf("junk blob error = %v, want ErrMalformedRootSignature", err)
	}
	if _, err := dev.CreateRootSignature(testBlob(t, gpucore.RootSignatureVersion1_1)); err == nil {
		t.Error("1.1 blob accepted by a 1.0 device")
	}

	rs, err := dev.CreateRootSignature(testBlob(t, gpucore.RootSignatureVersion1_0))
	if err != nil {
		t.Fatalf("CreateRootSignature failed: %v", err)
	}
	other, _ := NewDevice().CreateRootSignature(testBlob(t, gpucore.RootSignatureVersion1_0))

	tests := []struct {
		name string
		desc *gpucore.ComputePipelineDesc
	}{
		{"nil", nil},
		{"no bytecode", &gpucore.ComputePipelineDesc{RootSignature: rs}},
		{"foreign root signature", &gpucore.ComputePipelineDesc{RootSignature: other, Bytecode: []byte{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := dev.CreateComputePipelineState(tt.desc); !errors.Is(err, ErrInvalidPipelineDesc) {
				t.Errorf("error = %v, want ErrInvalidPipelineDesc", err)
			}
		})
	}
}

func TestDeviceInjectedFailures(t *testing.T) {
	injected := errors.New("injected")
	dev := NewDevice(WithRootSignatureFailure(1, injected), WithPipelineFailure(0, nil))
	blob := testBlob(t, gpucore.RootSignatureVersion1_1)

	rs, err := dev.CreateRootSignature(blob)
	if err != nil {
		t.Fatalf("first CreateRootSignature failed: %v", err)
	}
	if _, err := dev.CreateRootSignature(blob); !errors.Is(err, injected) {
		t.Errorf("second CreateRootSignature error = %v, want injected", err)
	}
	if _, err := dev.CreateRootSignature(blob); err != nil {
		t.Errorf("third CreateRootSignature failed: %v", err)
	}

	desc := &gpucore.ComputePipelineDesc{RootSignature: rs, Bytecode: []byte{1}}
	if _, err := dev.CreateComputePipelineState(desc); !errors.Is(err, ErrQueryFailed) {
		t.Errorf("first pipeline error = %v, want default injected error", err)
	}
	if _, err := dev.CreateComputePipelineState(desc); err != nil {
		t.Errorf("second pipeline failed: %v", err)
	}
}
