package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/shaders"
)

// Device adapts a hal device and queue to gpucore.Device.
// The hal objects are borrowed and never destroyed by Device.
// A Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue

	options    gpucore.ShadingRateOptions
	extensions gpucore.ShadingRateExtensions
	version    gpucore.RootSignatureVersion

	// inflight are submissions the queue has not reported complete.
	inflight []submission
}

var _ gpucore.Device = (*Device)(nil)

// Option configures the capabilities a Device reports.
type Option func(*Device)

// WithTier sets the reported VRS tier.
func WithTier(t gpucore.Tier) Option {
	return func(d *Device) { d.options.Tier = t }
}

// WithTileSize sets the reported shading-rate image tile size.
func WithTileSize(size uint32) Option {
	return func(d *Device) { d.options.ShadingRateImageTileSize = size }
}

// WithAdditionalShadingRates reports 2x4, 4x2 and 4x4 support.
func WithAdditionalShadingRates(ok bool) Option {
	return func(d *Device) { d.options.AdditionalShadingRatesSupported = ok }
}

// WithSumCombiner reports sum combiner support.
func WithSumCombiner(ok bool) Option {
	return func(d *Device) { d.extensions.SumCombinerSupported = ok }
}

// WithRootSignatureVersion sets the highest accepted root signature version.
func WithRootSignatureVersion(v gpucore.RootSignatureVersion) Option {
	return func(d *Device) { d.version = v }
}

// NewDevice wraps a hal device and queue. Without options it reports tier 2
// with 8x8 tiles and root signature version 1.1.
func NewDevice(device hal.Device, queue hal.Queue, opts ...Option) *Device {
	d := &Device{
		device: device,
		queue:  queue,
		options: gpucore.ShadingRateOptions{
			Tier:                     gpucore.Tier2,
			ShadingRateImageTileSize: 8,
		},
		version: gpucore.RootSignatureVersion1_1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDeviceFromProvider wraps the device of a gpucontext provider. The
// provider must also implement HalDevice() any and HalQueue() any.
func NewDeviceFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return NewDevice(device, queue, opts...), nil
}

// HAL returns the wrapped device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// QueryShadingRateOptions returns the configured tier and tile size.
func (d *Device) QueryShadingRateOptions() (gpucore.ShadingRateOptions, error) {
	return d.options, nil
}

// QueryShadingRateExtensions returns the configured combiner support.
func (d *Device) QueryShadingRateExtensions() (gpucore.ShadingRateExtensions, error) {
	return d.extensions, nil
}

// QueryRootSignatureVersion returns the configured version.
func (d *Device) QueryRootSignatureVersion() (gpucore.RootSignatureVersion, error) {
	return d.version, nil
}

// RootSignature is a bind group layout and the pipeline layout around it.
type RootSignature struct {
	device *Device
	desc   *gpucore.RootSignatureDesc

	constants uint32
	uavs      uint32

	bindGroupLayout hal.BindGroupLayout
	pipelineLayout  hal.PipelineLayout
}

// uniformSize is the uniform buffer size for n root constants, rounded up
// to the 16-byte uniform alignment.
func uniformSize(n uint32) uint64 {
	size := uint64(n) * 4
	return (size + 15) &^ 15
}

// CreateRootSignature builds the layouts for a serialized root signature.
// Exactly one constants parameter and at most one descriptor table are
// supported.
func (d *Device) CreateRootSignature(blob []byte) (gpucore.RootSignature, error) {
	desc, err := gpucore.DeserializeRootSignature(blob)
	if err != nil {
		return nil, err
	}
	if desc.Version > d.version {
		return nil, fmt.Errorf("%w: %s > %s", ErrVersionTooHigh, desc.Version, d.version)
	}

	rs := &RootSignature{device: d, desc: desc}
	tables := 0
	for _, p := range desc.Parameters {
		switch p.Type {
		case gpucore.RootParameterConstants:
			if rs.constants != 0 {
				return nil, fmt.Errorf("%w: more than one constants parameter", ErrUnsupportedLayout)
			}
			rs.constants = p.Constants.Num32BitValues
		case gpucore.RootParameterDescriptorTable:
			tables++
			rs.uavs += desc.CountRanges(gpucore.DescriptorRangeUAV)
		}
	}
	if rs.constants == 0 {
		return nil, fmt.Errorf("%w: no constants parameter", ErrUnsupportedLayout)
	}
	if tables > 1 {
		return nil, fmt.Errorf("%w: %d descriptor tables", ErrUnsupportedLayout, tables)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, 1+rs.uavs)
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: uniformSize(rs.constants),
		},
	})
	for i := uint32(0); i < rs.uavs; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    1 + i,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		})
	}

	bgl, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "vrs_root_signature",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "vrs_root_signature",
		BindGroupLayouts: []hal.BindGroupLayout{bgl},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(bgl)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	rs.bindGroupLayout = bgl
	rs.pipelineLayout = layout

	vrs.Logger().Debug("wgpu: root signature created",
		"constants", rs.constants, "uavs", rs.uavs, "version", desc.Version.String())
	return rs, nil
}

// Desc returns the decoded layout.
func (rs *RootSignature) Desc() *gpucore.RootSignatureDesc {
	return rs.desc
}

// Release destroys the layouts. Further calls are ignored.
func (rs *RootSignature) Release() {
	if rs.pipelineLayout != nil {
		rs.device.device.DestroyPipelineLayout(rs.pipelineLayout)
		rs.pipelineLayout = nil
	}
	if rs.bindGroupLayout != nil {
		rs.device.device.DestroyBindGroupLayout(rs.bindGroupLayout)
		rs.bindGroupLayout = nil
	}
}

// PipelineState is a compiled compute pipeline and its shader module.
type PipelineState struct {
	device        *Device
	label         string
	rootSignature *RootSignature

	module   hal.ShaderModule
	pipeline hal.ComputePipeline
}

// CreateComputePipelineState compiles desc.Bytecode, which must be SPIR-V.
func (d *Device) CreateComputePipelineState(desc *gpucore.ComputePipelineDesc) (gpucore.PipelineState, error) {
	if desc == nil {
		return nil, fmt.Errorf("wgpu: nil pipeline descriptor")
	}
	rs, ok := desc.RootSignature.(*RootSignature)
	if !ok || rs == nil {
		return nil, fmt.Errorf("%w: root signature %T", ErrForeignObject, desc.RootSignature)
	}
	words, err := shaders.Words(desc.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("wgpu: pipeline %q: %w", desc.Label, err)
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %q: %w", desc.Label, err)
	}
	pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: rs.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: desc.Entry(),
		},
	})
	if err != nil {
		d.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("wgpu: create compute pipeline %q: %w", desc.Label, err)
	}

	return &PipelineState{
		device:        d,
		label:         desc.Label,
		rootSignature: rs,
		module:        module,
		pipeline:      pipeline,
	}, nil
}

// Label returns the pipeline label.
func (p *PipelineState) Label() string {
	return p.label
}

// Release destroys the pipeline and its module. Further calls are ignored.
func (p *PipelineState) Release() {
	if p.pipeline != nil {
		p.device.device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.module != nil {
		p.device.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
