package recording

import (
	"errors"
	"fmt"

	"github.com/gogpu/vrs/gpucore"
)

// Errors returned by recording devices.
var (
	// ErrInvalidPipelineDesc is returned for pipelines without bytecode or
	// with a root signature this device did not create.
	ErrInvalidPipelineDesc = errors.New("recording: invalid pipeline description")

	// ErrQueryFailed is the default error of a failing capability query.
	ErrQueryFailed = errors.New("recording: feature query failed")
)

// Device is a gpucore.Device whose capabilities come from options.
// It keeps count of the objects it created and releases.
type Device struct {
	options    gpucore.ShadingRateOptions
	extensions gpucore.ShadingRateExtensions
	version    gpucore.RootSignatureVersion

	optionsErr    error
	extensionsErr error
	versionErr    error

	// failures inject errors into the n-th creation call (0-based).
	rootSignatureFailures map[int]error
	pipelineFailures      map[int]error

	rootSignatures int
	pipelines      int
	live           int
	errs           []error
}

// Option configures a recording Device.
type Option func(*Device)

// WithTier sets the reported shading-rate tier.
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

// WithMeshShaderPerPrimitive reports per-primitive mesh-shader rates.
func WithMeshShaderPerPrimitive(ok bool) Option {
	return func(d *Device) { d.extensions.MeshShaderPerPrimitiveShadingRateSupported = ok }
}

// WithRootSignatureVersion sets the highest accepted root signature version.
func WithRootSignatureVersion(v gpucore.RootSignatureVersion) Option {
	return func(d *Device) { d.version = v }
}

// WithOptionsQueryError makes QueryShadingRateOptions fail.
func WithOptionsQueryError(err error) Option {
	return func(d *Device) { d.optionsErr = orDefault(err) }
}

// WithExtensionsQueryError makes QueryShadingRateExtensions fail.
func WithExtensionsQueryError(err error) Option {
	return func(d *Device) { d.extensionsErr = orDefault(err) }
}

// WithVersionQueryError makes QueryRootSignatureVersion fail.
func WithVersionQueryError(err error) Option {
	return func(d *Device) { d.versionErr = orDefault(err) }
}

// WithRootSignatureFailure makes the n-th CreateRootSignature call fail.
func WithRootSignatureFailure(n int, err error) Option {
	return func(d *Device) { d.rootSignatureFailures[n] = err }
}

// WithPipelineFailure makes the n-th CreateComputePipelineState call fail.
func WithPipelineFailure(n int, err error) Option {
	return func(d *Device) { d.pipelineFailures[n] = err }
}

func orDefault(err error) error {
	if err == nil {
		return ErrQueryFailed
	}
	return err
}

// NewDevice creates a device. Without options it reports no VRS support
// and root signature version 1.1.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		version:               gpucore.RootSignatureVersion1_1,
		rootSignatureFailures: make(map[int]error),
		pipelineFailures:      make(map[int]error),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// QueryShadingRateOptions implements gpucore.Device.
func (d *Device) QueryShadingRateOptions() (gpucore.ShadingRateOptions, error) {
	if d.optionsErr != nil {
		return gpucore.ShadingRateOptions{}, d.optionsErr
	}
	return d.options, nil
}

// QueryShadingRateExtensions implements gpucore.Device.
func (d *Device) QueryShadingRateExtensions() (gpucore.ShadingRateExtensions, error) {
	if d.extensionsErr != nil {
		return gpucore.ShadingRateExtensions{}, d.extensionsErr
	}
	return d.extensions, nil
}

// QueryRootSignatureVersion implements gpucore.Device.
func (d *Device) QueryRootSignatureVersion() (gpucore.RootSignatureVersion, error) {
	if d.versionErr != nil {
		return 0, d.versionErr
	}
	return d.version, nil
}

// CreateRootSignature implements gpucore.Device. The blob is decoded and
// must not use a newer version than the device reports.
func (d *Device) CreateRootSignature(blob []byte) (gpucore.RootSignature, error) {
	n := d.rootSignatures
	d.rootSignatures++
	if err, ok := d.rootSignatureFailures[n]; ok {
		return nil, orDefault(err)
	}

	desc, err := gpucore.DeserializeRootSignature(blob)
	if err != nil {
		return nil, err
	}
	if desc.Version > d.version {
		return nil, fmt.Errorf("recording: root signature version %s not supported (max %s)", desc.Version, d.version)
	}

	d.live++
	return &RootSignature{dev: d, id: n, desc: desc}, nil
}

// CreateComputePipelineState implements gpucore.Device.
func (d *Device) CreateComputePipelineState(desc *gpucore.ComputePipelineDesc) (gpucore.PipelineState, error) {
	n := d.pipelines
	d.pipelines++
	if err, ok := d.pipelineFailures[n]; ok {
		return nil, orDefault(err)
	}

	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidPipelineDesc)
	}
	if len(desc.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: %q has no bytecode", ErrInvalidPipelineDesc, desc.Label)
	}
	rs, ok := desc.RootSignature.(*RootSignature)
	if !ok || rs.dev != d || rs.released {
		return nil, fmt.Errorf("%w: %q has a foreign or released root signature", ErrInvalidPipelineDesc, desc.Label)
	}

	d.live++
	return &PipelineState{
		dev:           d,
		label:         desc.Label,
		entryPoint:    desc.Entry(),
		rootSignature: rs,
		bytecodeSize:  len(desc.Bytecode),
	}, nil
}

// LiveObjects returns the number of created objects not yet released.
func (d *Device) LiveObjects() int {
	return d.live
}

// Err returns lifetime mistakes such as double releases.
func (d *Device) Err() error {
	return errors.Join(d.errs...)
}

func (d *Device) release(what string, released *bool) {
	if *released {
		d.errs = append(d.errs, fmt.Errorf("recording: %s released twice", what))
		return
	}
	*released = true
	d.live--
}

// RootSignature is a root signature created by a recording Device.
type RootSignature struct {
	dev      *Device
	id       int
	desc     *gpucore.RootSignatureDesc
	released bool
}

// Desc returns the decoded layout.
func (r *RootSignature) Desc() *gpucore.RootSignatureDesc { return r.desc }

// Released reports whether Release was called.
func (r *RootSignature) Released() bool { return r.released }

// Release implements gpucore.RootSignature.
func (r *RootSignature) Release() {
	r.dev.release(fmt.Sprintf("root signature #%d", r.id), &r.released)
}

// PipelineState is a pipeline created by a recording Device.
type PipelineState struct {
	dev           *Device
	label         string
	entryPoint    string
	rootSignature *RootSignature
	bytecodeSize  int
	released      bool
}

// Label returns the pipeline's debug label.
func (p *PipelineState) Label() string { return p.label }

// EntryPoint returns the shader entry point.
func (p *PipelineState) EntryPoint() string { return p.entryPoint }

// RootSignature returns the layout the pipeline was created with.
func (p *PipelineState) RootSignature() *RootSignature { return p.rootSignature }

// Released reports whether Release was called.
func (p *PipelineState) Released() bool { return p.released }

// Release implements gpucore.PipelineState.
func (p *PipelineState) Release() {
	p.dev.release("pipeline "+p.label, &p.released)
}

// BytecodeSize returns the length of the shader program in bytes.
func (p *PipelineState) BytecodeSize() int { return p.bytecodeSize }
