package vrs

import (
	"errors"
	"fmt"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/shaders"
)

// Root signature layouts. Parameter 0 holds the inline constants, parameter
// 1 the descriptor table starting at the heap's first slot.
const (
	maskConstantCount  = 13
	maskUAVCount       = 4
	debugConstantCount = 6
	debugUAVCount      = 2

	constantsParameter = 0
	tableParameter     = 1
)

func rootSignatureDesc(version gpucore.RootSignatureVersion, constants, uavs uint32) *gpucore.RootSignatureDesc {
	return &gpucore.RootSignatureDesc{
		Version: version,
		Parameters: []gpucore.RootParameter{
			gpucore.ConstantsParameter(constants, 0),
			gpucore.TableParameter(
				gpucore.DescriptorRange{Type: gpucore.DescriptorRangeUAV, NumDescriptors: uavs},
				gpucore.DescriptorRange{
					Type:           gpucore.DescriptorRangeCBV,
					NumDescriptors: constants,
					Flags:          gpucore.DescriptorRangeFlagDataStatic,
				},
			),
		},
	}
}

// maskRootSignatureDesc is 13 constants plus {UAV x4, CBV x13}.
func maskRootSignatureDesc(version gpucore.RootSignatureVersion) *gpucore.RootSignatureDesc {
	return rootSignatureDesc(version, maskConstantCount, maskUAVCount)
}

// debugRootSignatureDesc is 6 constants plus {UAV x2, CBV x6}.
func debugRootSignatureDesc(version gpucore.RootSignatureVersion) *gpucore.RootSignatureDesc {
	return rootSignatureDesc(version, debugConstantCount, debugUAVCount)
}

// pipelineObjects are the GPU objects a controller owns between Initialize
// and Release.
type pipelineObjects struct {
	rootSignature      gpucore.RootSignature
	debugRootSignature gpucore.RootSignature
	pipelines          [shaders.Count]gpucore.PipelineState
	maskPermutation    shaders.Permutation
}

// release destroys every object that was created. Safe on a partially
// built set.
func (o *pipelineObjects) release() {
	for i := len(o.pipelines) - 1; i >= 0; i-- {
		if o.pipelines[i] != nil {
			o.pipelines[i].Release()
			o.pipelines[i] = nil
		}
	}
	if o.debugRootSignature != nil {
		o.debugRootSignature.Release()
		o.debugRootSignature = nil
	}
	if o.rootSignature != nil {
		o.rootSignature.Release()
		o.rootSignature = nil
	}
}

// buildPipelineObjects creates both root signatures, the mask pipeline for
// perm and the debug pipeline. On failure everything created so far is
// released.
func buildPipelineObjects(device gpucore.Device, lib shaders.Library, version gpucore.RootSignatureVersion, perm shaders.Permutation) (_ *pipelineObjects, err error) {
	o := &pipelineObjects{maskPermutation: perm}
	defer func() {
		if err != nil {
			o.release()
		}
	}()

	if o.rootSignature, err = createRootSignature(device, maskRootSignatureDesc(version)); err != nil {
		return nil, err
	}
	if o.debugRootSignature, err = createRootSignature(device, debugRootSignatureDesc(version)); err != nil {
		return nil, err
	}
	if o.pipelines[perm], err = createPipeline(device, lib, perm, o.rootSignature); err != nil {
		return nil, err
	}
	if o.pipelines[shaders.Debug], err = createPipeline(device, lib, shaders.Debug, o.debugRootSignature); err != nil {
		return nil, err
	}
	return o, nil
}

func createRootSignature(device gpucore.Device, desc *gpucore.RootSignatureDesc) (gpucore.RootSignature, error) {
	blob, err := gpucore.SerializeRootSignature(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize: %w", ErrRootSignature, err)
	}
	rs, err := device.CreateRootSignature(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootSignature, err)
	}
	if rs == nil {
		return nil, fmt.Errorf("%w: device returned no root signature", ErrRootSignature)
	}
	return rs, nil
}

func createPipeline(device gpucore.Device, lib shaders.Library, perm shaders.Permutation, rs gpucore.RootSignature) (gpucore.PipelineState, error) {
	code, err := lib.Bytecode(perm)
	if err != nil {
		if errors.Is(err, shaders.ErrMissingBytecode) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineState, perm, err)
	}
	pso, err := device.CreateComputePipelineState(&gpucore.ComputePipelineDesc{
		Label:         "vrs_" + perm.String(),
		RootSignature: rs,
		Bytecode:      code,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineState, perm, err)
	}
	if pso == nil {
		return nil, fmt.Errorf("%w: %s: device returned no pipeline", ErrPipelineState, perm)
	}
	return pso, nil
}
