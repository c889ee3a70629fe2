package recording

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/vrs/gpucore"
)

// Recording errors. They are reported by CommandList.Err, never returned
// from the recording calls themselves.
var (
	// ErrStateMismatch is a barrier whose Before state is not the
	// resource's current state.
	ErrStateMismatch = errors.New("recording: barrier state mismatch")

	// ErrImageState is a shading-rate image bound outside the
	// shading-rate-source state.
	ErrImageState = errors.New("recording: shading-rate image not in shading-rate-source state")

	// ErrIncompleteDispatch is a dispatch without a bound root signature or
	// pipeline, or with a pipeline built for another root signature.
	ErrIncompleteDispatch = errors.New("recording: incomplete compute state at dispatch")
)

// StateError describes a validation failure at a command index.
type StateError struct {
	Index int
	Err   error
	Msg   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("command %d: %v: %s", e.Index, e.Err, e.Msg)
}

func (e *StateError) Unwrap() error { return e.Err }

// CommandList is a gpucore.CommandList that records instead of executing.
type CommandList struct {
	commands []Command
	errs     []error

	// states are the resource states as of the last recorded barrier.
	states map[gpucore.Resource]gpucore.ResourceState

	rootSignature gpucore.RootSignature
	pipeline      gpucore.PipelineState

	shadingRateImage gpucore.Resource
	baseRate         gpucore.ShadingRate
	combiners        gpucore.Combiners
	rateSet          bool
}

// NewCommandList creates an empty command list.
func NewCommandList() *CommandList {
	return &CommandList{states: make(map[gpucore.Resource]gpucore.ResourceState)}
}

func (l *CommandList) fail(err error, format string, args ...any) {
	l.errs = append(l.errs, &StateError{Index: len(l.commands) - 1, Err: err, Msg: fmt.Sprintf(format, args...)})
}

// stateOf returns the state r is in at this point of the recording.
func (l *CommandList) stateOf(r gpucore.Resource) (gpucore.ResourceState, bool) {
	if s, ok := l.states[r]; ok {
		return s, true
	}
	if rr, ok := r.(*Resource); ok {
		return rr.state, true
	}
	return 0, false
}

// ResourceBarrier implements gpucore.CommandList.
func (l *CommandList) ResourceBarrier(barriers ...gpucore.ResourceBarrier) {
	l.commands = append(l.commands, ResourceBarrierCommand{Barriers: append([]gpucore.ResourceBarrier(nil), barriers...)})
	for _, b := range barriers {
		if cur, known := l.stateOf(b.Resource); known && cur != b.Before {
			l.fail(ErrStateMismatch, "%s is %s, barrier expects %s", labelOf(b.Resource), cur, b.Before)
		}
		l.states[b.Resource] = b.After
	}
}

// SetDescriptorHeaps implements gpucore.CommandList.
func (l *CommandList) SetDescriptorHeaps(heaps ...gpucore.DescriptorHeap) {
	l.commands = append(l.commands, SetDescriptorHeapsCommand{Heaps: append([]gpucore.DescriptorHeap(nil), heaps...)})
}

// SetComputeRootSignature implements gpucore.CommandList.
func (l *CommandList) SetComputeRootSignature(rs gpucore.RootSignature) {
	l.commands = append(l.commands, SetComputeRootSignatureCommand{RootSignature: rs})
	l.rootSignature = rs
}

// SetComputeRoot32BitConstants implements gpucore.CommandList.
func (l *CommandList) SetComputeRoot32BitConstants(param uint32, values []uint32, destOffset uint32) {
	l.commands = append(l.commands, SetComputeRoot32BitConstantsCommand{
		Param:      param,
		Values:     append([]uint32(nil), values...),
		DestOffset: destOffset,
	})
}

// SetComputeRootDescriptorTable implements gpucore.CommandList.
func (l *CommandList) SetComputeRootDescriptorTable(param uint32, base gpucore.DescriptorHandle) {
	l.commands = append(l.commands, SetComputeRootDescriptorTableCommand{Param: param, Base: base})
}

// SetPipelineState implements gpucore.CommandList.
func (l *CommandList) SetPipelineState(pso gpucore.PipelineState) {
	l.commands = append(l.commands, SetPipelineStateCommand{Pipeline: pso})
	l.pipeline = pso
}

// Dispatch implements gpucore.CommandList.
func (l *CommandList) Dispatch(x, y, z uint32) {
	l.commands = append(l.commands, DispatchCommand{X: x, Y: y, Z: z})
	switch {
	case l.rootSignature == nil:
		l.fail(ErrIncompleteDispatch, "no root signature")
	case l.pipeline == nil:
		l.fail(ErrIncompleteDispatch, "no pipeline")
	default:
		if p, ok := l.pipeline.(*PipelineState); ok && gpucore.RootSignature(p.rootSignature) != l.rootSignature {
			l.fail(ErrIncompleteDispatch, "pipeline %s built for another root signature", p.label)
		}
	}
}

// RSSetShadingRate implements gpucore.CommandList.
func (l *CommandList) RSSetShadingRate(base gpucore.ShadingRate, combiners gpucore.Combiners) {
	l.commands = append(l.commands, RSSetShadingRateCommand{Base: base, Combiners: combiners})
	l.baseRate, l.combiners, l.rateSet = base, combiners, true
}

// RSSetShadingRateImage implements gpucore.CommandList.
func (l *CommandList) RSSetShadingRateImage(image gpucore.Resource) {
	l.commands = append(l.commands, RSSetShadingRateImageCommand{Image: image})
	l.shadingRateImage = image
	if image == nil {
		return
	}
	if cur, known := l.stateOf(image); known && cur != gpucore.ResourceStateShadingRateSource {
		l.fail(ErrImageState, "%s is %s", image.Label(), cur)
	}
}

// Commands returns a copy of the recorded commands.
func (l *CommandList) Commands() []Command {
	return append([]Command(nil), l.commands...)
}

// Len returns the number of recorded commands.
func (l *CommandList) Len() int {
	return len(l.commands)
}

// Dispatches returns the recorded dispatches in order.
func (l *CommandList) Dispatches() []DispatchCommand {
	var out []DispatchCommand
	for _, c := range l.commands {
		if d, ok := c.(DispatchCommand); ok {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many commands of type t were recorded.
func (l *CommandList) Count(t CommandType) int {
	n := 0
	for _, c := range l.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// ShadingRateImage returns the currently bound shading-rate image.
func (l *CommandList) ShadingRateImage() gpucore.Resource {
	return l.shadingRateImage
}

// ShadingRate returns the last base rate and combiners, and whether any
// were set.
func (l *CommandList) ShadingRate() (gpucore.ShadingRate, gpucore.Combiners, bool) {
	return l.baseRate, l.combiners, l.rateSet
}

// ResourceState returns the state r is in at the end of the recording.
func (l *CommandList) ResourceState(r gpucore.Resource) (gpucore.ResourceState, bool) {
	return l.stateOf(r)
}

// Err returns the validation failures collected while recording.
func (l *CommandList) Err() error {
	return errors.Join(l.errs...)
}

// Execute applies the final resource states to the recorded *Resource
// values, as submitting the list to a queue would.
func (l *CommandList) Execute() {
	for r, s := range l.states {
		if rr, ok := r.(*Resource); ok {
			rr.state = s
		}
	}
}

// Reset clears commands, errors and bound state.
func (l *CommandList) Reset() {
	*l = CommandList{
		commands: l.commands[:0],
		states:   make(map[gpucore.Resource]gpucore.ResourceState),
	}
}

// Playback replays the recorded commands into dst in order.
func (l *CommandList) Playback(dst gpucore.CommandList) {
	for _, c := range l.commands {
		switch c := c.(type) {
		case ResourceBarrierCommand:
			dst.ResourceBarrier(c.Barriers...)
		case SetDescriptorHeapsCommand:
			dst.SetDescriptorHeaps(c.Heaps...)
		case SetComputeRootSignatureCommand:
			dst.SetComputeRootSignature(c.RootSignature)
		case SetComputeRoot32BitConstantsCommand:
			dst.SetComputeRoot32BitConstants(c.Param, c.Values, c.DestOffset)
		case SetComputeRootDescriptorTableCommand:
			dst.SetComputeRootDescriptorTable(c.Param, c.Base)
		case SetPipelineStateCommand:
			dst.SetPipelineState(c.Pipeline)
		case DispatchCommand:
			dst.Dispatch(c.X, c.Y, c.Z)
		case RSSetShadingRateCommand:
			dst.RSSetShadingRate(c.Base, c.Combiners)
		case RSSetShadingRateImageCommand:
			dst.RSSetShadingRateImage(c.Image)
		}
	}
}

// String returns one numbered line per command.
func (l *CommandList) String() string {
	var b strings.Builder
	for i, c := range l.commands {
		fmt.Fprintf(&b, "%3d  %s\n", i, c)
	}
	return b.String()
}
