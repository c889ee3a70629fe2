package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vrs/gpucore"
)

// minBufferSize is the smallest buffer the backend allocates.
const minBufferSize = 4

// Buffer is a storage buffer usable as a UAV or as the shading-rate image.
type Buffer struct {
	device *Device
	label  string
	size   uint64
	state  gpucore.ResourceState

	buf hal.Buffer
}

var _ gpucore.Resource = (*Buffer)(nil)

// CreateBuffer allocates a storage buffer in the given initial state.
func (d *Device) CreateBuffer(label string, size uint64, initial gpucore.ResourceState) (*Buffer, error) {
	if size < minBufferSize {
		size = minBufferSize
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	return &Buffer{device: d, label: label, size: size, state: initial, buf: buf}, nil
}

// Label returns the buffer label.
func (b *Buffer) Label() string {
	return b.label
}

// Size returns the allocated size in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

// State returns the state committed by the last submitted command list.
func (b *Buffer) State() gpucore.ResourceState {
	return b.state
}

// Write uploads data at offset through the queue.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if b.buf == nil {
		return fmt.Errorf("wgpu: write to released buffer %q", b.label)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("wgpu: write of %d bytes at %d overruns buffer %q (%d bytes)",
			len(data), offset, b.label, b.size)
	}
	if err := b.device.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("wgpu: write buffer %q: %w", b.label, err)
	}
	return nil
}

// Release destroys the buffer. Further calls are ignored.
func (b *Buffer) Release() {
	if b.buf != nil {
		b.device.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}

func (b *Buffer) binding(binding uint32) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding: binding,
		Resource: gputypes.BufferBinding{
			Buffer: b.buf.NativeHandle(),
			Offset: 0,
			Size:   0, // whole buffer
		},
	}
}

// DescriptorHeap is a fixed array of UAV slots. Handles are slot indices.
type DescriptorHeap struct {
	slots []*Buffer
}

var _ gpucore.DescriptorHeap = (*DescriptorHeap)(nil)

// NewDescriptorHeap returns a heap with n empty slots.
func NewDescriptorHeap(n int) *DescriptorHeap {
	return &DescriptorHeap{slots: make([]*Buffer, n)}
}

// GPUDescriptorHandleForHeapStart returns the handle of slot 0.
func (h *DescriptorHeap) GPUDescriptorHandleForHeapStart() gpucore.DescriptorHandle {
	return gpucore.DescriptorHandle{}
}

// SetUAV places b at slot i. Out-of-range slots are ignored.
func (h *DescriptorHeap) SetUAV(i int, b *Buffer) {
	if i >= 0 && i < len(h.slots) {
		h.slots[i] = b
	}
}

// UAV returns the buffer in slot i, or nil.
func (h *DescriptorHeap) UAV(i int) *Buffer {
	if i < 0 || i >= len(h.slots) {
		return nil
	}
	return h.slots[i]
}

// Size returns the number of slots.
func (h *DescriptorHeap) Size() int {
	return len(h.slots)
}
