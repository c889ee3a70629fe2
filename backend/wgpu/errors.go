package wgpu

import "errors"

// Errors returned by the backend.
var (
	// ErrNoHAL is returned when a device provider does not expose hal types.
	ErrNoHAL = errors.New("wgpu: provider does not expose hal device and queue")

	// ErrForeignObject is returned when an object from another backend is
	// passed to this one.
	ErrForeignObject = errors.New("wgpu: object was not created by this backend")

	// ErrUnsupportedLayout is returned for root signatures WebGPU cannot express.
	ErrUnsupportedLayout = errors.New("wgpu: unsupported root signature layout")

	// ErrVersionTooHigh is returned for root signatures newer than the device accepts.
	ErrVersionTooHigh = errors.New("wgpu: root signature version not supported")

	// ErrIncompleteDispatch is returned when Dispatch is recorded without the
	// state it needs.
	ErrIncompleteDispatch = errors.New("wgpu: incomplete dispatch state")

	// ErrStateMismatch is returned when a barrier's before state does not
	// match the tracked state of the buffer.
	ErrStateMismatch = errors.New("wgpu: resource state mismatch")

	// ErrClosed is returned when a released or submitted list is used.
	ErrClosed = errors.New("wgpu: command list closed")

	// ErrTimeout is returned when the GPU does not finish before the deadline.
	ErrTimeout = errors.New("wgpu: submission timeout")
)
