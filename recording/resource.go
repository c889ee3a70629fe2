package recording

import "github.com/gogpu/vrs/gpucore"

// Resource is a GPU resource stand-in with a tracked state.
type Resource struct {
	label string
	state gpucore.ResourceState
}

// NewResource creates a resource in the given initial state.
func NewResource(label string, initial gpucore.ResourceState) *Resource {
	return &Resource{label: label, state: initial}
}

// Label implements gpucore.Resource.
func (r *Resource) Label() string { return r.label }

// State returns the state after the last executed command list.
func (r *Resource) State() gpucore.ResourceState { return r.state }

// DescriptorHeap is a shader-visible heap of resource slots.
type DescriptorHeap struct {
	slots []gpucore.Resource
}

// NewDescriptorHeap creates a heap with size empty slots.
func NewDescriptorHeap(size int) *DescriptorHeap {
	return &DescriptorHeap{slots: make([]gpucore.Resource, size)}
}

// GPUDescriptorHandleForHeapStart implements gpucore.DescriptorHeap.
func (h *DescriptorHeap) GPUDescriptorHandleForHeapStart() gpucore.DescriptorHandle {
	return gpucore.DescriptorHandle{}
}

// SetUAV places r at slot i. Out-of-range slots are ignored.
func (h *DescriptorHeap) SetUAV(i int, r gpucore.Resource) {
	if i >= 0 && i < len(h.slots) {
		h.slots[i] = r
	}
}

// UAV returns the resource at slot i, or nil.
func (h *DescriptorHeap) UAV(i int) gpucore.Resource {
	if i < 0 || i >= len(h.slots) {
		return nil
	}
	return h.slots[i]
}

// Size returns the number of slots.
func (h *DescriptorHeap) Size() int { return len(h.slots) }
