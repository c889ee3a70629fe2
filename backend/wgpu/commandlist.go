package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/gpucore"
)

// CommandList records controller work into a hal command encoder.
//
// Recording calls cannot fail; problems are collected and returned by Err
// and Submit. A list is single-use: after Submit or Release it must be Reset
// before recording again.
type CommandList struct {
	device  *Device
	label   string
	encoder hal.CommandEncoder
	open    bool

	heap          *DescriptorHeap
	rootSignature *RootSignature
	pipeline      *PipelineState
	constants     []uint32
	table         gpucore.DescriptorHandle
	tableSet      bool
	dispatches    int

	// states are the buffer states as of the last recorded barrier.
	states map[*Buffer]gpucore.ResourceState

	shadingRateImage *Buffer
	baseRate         gpucore.ShadingRate
	combiners        gpucore.Combiners

	bindGroups []hal.BindGroup
	uniforms   []hal.Buffer
	errs       []error
}

var _ gpucore.CommandList = (*CommandList)(nil)

// NewCommandList creates a command list and begins encoding.
func (d *Device) NewCommandList(label string) (*CommandList, error) {
	l := &CommandList{device: d, label: label}
	if err := l.begin(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CommandList) begin() error {
	l.device.reclaim()
	encoder, err := l.device.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: l.label})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(l.label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	l.encoder = encoder
	l.open = true
	l.states = make(map[*Buffer]gpucore.ResourceState)
	return nil
}

func (l *CommandList) fail(err error, format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}

// usable records ErrClosed and returns false when the list is not open.
func (l *CommandList) usable(op string) bool {
	if !l.open {
		l.fail(ErrClosed, "%s", op)
		return false
	}
	return true
}

func (l *CommandList) stateOf(b *Buffer) gpucore.ResourceState {
	if s, ok := l.states[b]; ok {
		return s
	}
	return b.state
}

// ResourceBarrier validates transitions against the tracked buffer states.
// WebGPU synchronizes buffer access itself, so nothing is encoded.
func (l *CommandList) ResourceBarrier(barriers ...gpucore.ResourceBarrier) {
	if !l.usable("ResourceBarrier") {
		return
	}
	for _, br := range barriers {
		b, ok := br.Resource.(*Buffer)
		if !ok {
			l.fail(ErrForeignObject, "barrier on %T", br.Resource)
			continue
		}
		if cur := l.stateOf(b); cur != br.Before {
			l.fail(ErrStateMismatch, "%s is %s, barrier expects %s", b.label, cur, br.Before)
		}
		l.states[b] = br.After
	}
}

// SetDescriptorHeaps binds the first heap.
func (l *CommandList) SetDescriptorHeaps(heaps ...gpucore.DescriptorHeap) {
	if !l.usable("SetDescriptorHeaps") || len(heaps) == 0 {
		return
	}
	h, ok := heaps[0].(*DescriptorHeap)
	if !ok {
		l.fail(ErrForeignObject, "descriptor heap %T", heaps[0])
		return
	}
	l.heap = h
}

// SetComputeRootSignature binds rs and clears the root constants.
func (l *CommandList) SetComputeRootSignature(rs gpucore.RootSignature) {
	if !l.usable("SetComputeRootSignature") {
		return
	}
	r, ok := rs.(*RootSignature)
	if !ok {
		l.fail(ErrForeignObject, "root signature %T", rs)
		return
	}
	l.rootSignature = r
	l.constants = make([]uint32, r.constants)
	l.tableSet = false
}

// SetComputeRoot32BitConstants stores values for the next dispatch.
func (l *CommandList) SetComputeRoot32BitConstants(param uint32, values []uint32, destOffset uint32) {
	if !l.usable("SetComputeRoot32BitConstants") {
		return
	}
	if l.rootSignature == nil {
		l.fail(ErrIncompleteDispatch, "root constants before root signature")
		return
	}
	params := l.rootSignature.desc.Parameters
	if int(param) >= len(params) || params[param].Type != gpucore.RootParameterConstants {
		l.fail(ErrIncompleteDispatch, "parameter %d is not a constants parameter", param)
		return
	}
	end := int(destOffset) + len(values)
	if end > len(l.constants) {
		l.fail(ErrIncompleteDispatch, "%d constants at offset %d exceed %d", len(values), destOffset, len(l.constants))
		return
	}
	copy(l.constants[destOffset:end], values)
}

// SetComputeRootDescriptorTable selects the heap slots of the UAV bindings.
func (l *CommandList) SetComputeRootDescriptorTable(param uint32, base gpucore.DescriptorHandle) {
	if !l.usable("SetComputeRootDescriptorTable") {
		return
	}
	l.table, l.tableSet = base, true
}

// SetPipelineState binds a compute pipeline.
func (l *CommandList) SetPipelineState(pso gpucore.PipelineState) {
	if !l.usable("SetPipelineState") {
		return
	}
	p, ok := pso.(*PipelineState)
	if !ok {
		l.fail(ErrForeignObject, "pipeline %T", pso)
		return
	}
	l.pipeline = p
}

// Dispatch encodes one compute pass with a fresh uniform buffer and bind group.
func (l *CommandList) Dispatch(x, y, z uint32) {
	if !l.usable("Dispatch") {
		return
	}
	entries, ok := l.dispatchEntries()
	if !ok {
		return
	}

	dev := l.device.device
	uniform, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: l.label + "_constants",
		Size:  uniformSize(l.rootSignature.constants),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		l.fail(err, "create constants buffer")
		return
	}
	l.uniforms = append(l.uniforms, uniform)
	if err := l.device.queue.WriteBuffer(uniform, 0, constantBytes(l.constants)); err != nil {
		l.fail(err, "upload constants for %s", l.pipeline.label)
		return
	}

	entries[0] = gputypes.BindGroupEntry{
		Binding:  0,
		Resource: gputypes.BufferBinding{Buffer: uniform.NativeHandle()},
	}
	bg, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   l.pipeline.label,
		Layout:  l.rootSignature.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		l.fail(err, "create bind group for %s", l.pipeline.label)
		return
	}
	l.bindGroups = append(l.bindGroups, bg)

	pass := l.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: l.pipeline.label})
	pass.SetPipeline(l.pipeline.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(x, y, z)
	pass.End()
	l.dispatches++

	vrs.Logger().Debug("wgpu: dispatched",
		"pipeline", l.pipeline.label, "x", x, "y", y, "z", z)
}

// dispatchEntries validates the bound state and returns the bind group
// entries with slot 0 left for the constants buffer.
func (l *CommandList) dispatchEntries() ([]gputypes.BindGroupEntry, bool) {
	switch {
	case l.rootSignature == nil:
		l.fail(ErrIncompleteDispatch, "no root signature")
		return nil, false
	case l.pipeline == nil || l.pipeline.pipeline == nil:
		l.fail(ErrIncompleteDispatch, "no pipeline")
		return nil, false
	case l.pipeline.rootSignature != l.rootSignature:
		l.fail(ErrIncompleteDispatch, "pipeline %s built for another root signature", l.pipeline.label)
		return nil, false
	}

	uavs := l.rootSignature.uavs
	entries := make([]gputypes.BindGroupEntry, 1+uavs)
	if uavs == 0 {
		return entries, true
	}
	if l.heap == nil || !l.tableSet {
		l.fail(ErrIncompleteDispatch, "no descriptor table")
		return nil, false
	}
	for i := uint32(0); i < uavs; i++ {
		slot := int(l.table.Offset(i).Ptr)
		b := l.heap.UAV(slot)
		if b == nil || b.buf == nil {
			l.fail(ErrIncompleteDispatch, "descriptor slot %d is empty", slot)
			return nil, false
		}
		entries[1+i] = b.binding(1 + i)
	}
	return entries, true
}

func constantBytes(values []uint32) []byte {
	out := make([]byte, uniformSize(uint32(len(values))))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// RSSetShadingRate stores the per-draw rate for the host's render passes.
func (l *CommandList) RSSetShadingRate(base gpucore.ShadingRate, combiners gpucore.Combiners) {
	if !l.usable("RSSetShadingRate") {
		return
	}
	l.baseRate, l.combiners = base, combiners
}

// RSSetShadingRateImage stores the image for the host's render passes.
// The image must be in the shading-rate-source state.
func (l *CommandList) RSSetShadingRateImage(image gpucore.Resource) {
	if !l.usable("RSSetShadingRateImage") {
		return
	}
	if image == nil {
		l.shadingRateImage = nil
		return
	}
	b, ok := image.(*Buffer)
	if !ok {
		l.fail(ErrForeignObject, "shading-rate image %T", image)
		return
	}
	if cur := l.stateOf(b); cur != gpucore.ResourceStateShadingRateSource {
		l.fail(ErrStateMismatch, "shading-rate image %s is %s", b.label, cur)
	}
	l.shadingRateImage = b
}

// ShadingRateImage returns the bound shading-rate image, or nil.
func (l *CommandList) ShadingRateImage() *Buffer {
	return l.shadingRateImage
}

// ShadingRate returns the last per-draw rate and combiners.
func (l *CommandList) ShadingRate() (gpucore.ShadingRate, gpucore.Combiners) {
	return l.baseRate, l.combiners
}

// Dispatches returns the number of encoded compute passes.
func (l *CommandList) Dispatches() int {
	return l.dispatches
}

// Err returns the problems collected while recording.
func (l *CommandList) Err() error {
	return errors.Join(l.errs...)
}

// Submit ends encoding, submits the work and waits up to timeout for the
// queue to report it complete. Tracked buffer states are committed on
// success. Per-dispatch objects are freed once the GPU is done with them:
// immediately on success or on a rejected submission, and by a later
// Submit or Device.Flush after a timeout.
func (l *CommandList) Submit(timeout time.Duration) error {
	if !l.open {
		return ErrClosed
	}
	l.open = false

	if err := l.Err(); err != nil {
		l.encoder.DiscardEncoding()
		l.freeTransients()
		return err
	}

	cmdBuf, err := l.encoder.EndEncoding()
	if err != nil {
		l.freeTransients()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}

	d := l.device
	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		d.device.FreeCommandBuffer(cmdBuf)
		l.freeTransients()
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	d.track(submission{
		index:      index,
		cmdBuf:     cmdBuf,
		bindGroups: l.bindGroups,
		uniforms:   l.uniforms,
	})
	l.bindGroups, l.uniforms = nil, nil

	if !d.waitFor(index, timeout) {
		return fmt.Errorf("%w: submission %d after %v", ErrTimeout, index, timeout)
	}
	d.reclaim()

	for b, s := range l.states {
		b.state = s
	}
	vrs.Logger().Debug("wgpu: submitted", "list", l.label, "index", index, "dispatches", l.dispatches)
	return nil
}

// Reset discards any unsubmitted work and begins a new recording.
func (l *CommandList) Reset() error {
	l.Release()
	*l = CommandList{device: l.device, label: l.label}
	return l.begin()
}

// Release discards unsubmitted work and frees per-dispatch objects.
func (l *CommandList) Release() {
	if l.open {
		l.encoder.DiscardEncoding()
		l.open = false
	}
	l.freeTransients()
}

func (l *CommandList) freeTransients() {
	dev := l.device.device
	for _, bg := range l.bindGroups {
		dev.DestroyBindGroup(bg)
	}
	for _, u := range l.uniforms {
		dev.DestroyBuffer(u)
	}
	l.bindGroups, l.uniforms = nil, nil
}
