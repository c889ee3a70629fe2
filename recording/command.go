package recording

import (
	"fmt"
	"strings"

	"github.com/gogpu/vrs/gpucore"
)

// CommandType identifies the type of a recorded command.
type CommandType uint8

const (
	// Compute commands
	CmdResourceBarrier               CommandType = iota // Resource state transitions
	CmdSetDescriptorHeaps                               // Bind descriptor heaps
	CmdSetComputeRootSignature                          // Bind compute root signature
	CmdSetComputeRoot32BitConstants                     // Upload inline constants
	CmdSetComputeRootDescriptorTable                    // Bind descriptor table
	CmdSetPipelineState                                 // Bind pipeline
	CmdDispatch                                         // Compute dispatch

	// Rasterizer commands
	CmdRSSetShadingRate      // Base rate and combiners
	CmdRSSetShadingRateImage // Bind or unbind shading-rate image
)

var commandTypeNames = [...]string{
	CmdResourceBarrier:               "ResourceBarrier",
	CmdSetDescriptorHeaps:            "SetDescriptorHeaps",
	CmdSetComputeRootSignature:       "SetComputeRootSignature",
	CmdSetComputeRoot32BitConstants:  "SetComputeRoot32BitConstants",
	CmdSetComputeRootDescriptorTable: "SetComputeRootDescriptorTable",
	CmdSetPipelineState:              "SetPipelineState",
	CmdDispatch:                      "Dispatch",
	CmdRSSetShadingRate:              "RSSetShadingRate",
	CmdRSSetShadingRateImage:         "RSSetShadingRateImage",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all recorded commands.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	// String formats the command for traces.
	String() string
}

// ResourceBarrierCommand transitions resources between states.
type ResourceBarrierCommand struct {
	Barriers []gpucore.ResourceBarrier
}

// Type implements Command.
func (ResourceBarrierCommand) Type() CommandType { return CmdResourceBarrier }

func (c ResourceBarrierCommand) String() string {
	parts := make([]string, len(c.Barriers))
	for i, b := range c.Barriers {
		parts[i] = fmt.Sprintf("%s: %s -> %s", labelOf(b.Resource), b.Before, b.After)
	}
	return "ResourceBarrier(" + strings.Join(parts, ", ") + ")"
}

// SetDescriptorHeapsCommand binds shader-visible heaps.
type SetDescriptorHeapsCommand struct {
	Heaps []gpucore.DescriptorHeap
}

// Type implements Command.
func (SetDescriptorHeapsCommand) Type() CommandType { return CmdSetDescriptorHeaps }

func (c SetDescriptorHeapsCommand) String() string {
	return fmt.Sprintf("SetDescriptorHeaps(%d)", len(c.Heaps))
}

// SetComputeRootSignatureCommand binds the compute root signature.
type SetComputeRootSignatureCommand struct {
	RootSignature gpucore.RootSignature
}

// Type implements Command.
func (SetComputeRootSignatureCommand) Type() CommandType { return CmdSetComputeRootSignature }

func (c SetComputeRootSignatureCommand) String() string {
	if rs, ok := c.RootSignature.(*RootSignature); ok {
		return fmt.Sprintf("SetComputeRootSignature(#%d, %d params)", rs.id, len(rs.desc.Parameters))
	}
	return "SetComputeRootSignature(?)"
}

// SetComputeRoot32BitConstantsCommand uploads inline constants.
type SetComputeRoot32BitConstantsCommand struct {
	Param      uint32
	Values     []uint32
	DestOffset uint32
}

// Type implements Command.
func (SetComputeRoot32BitConstantsCommand) Type() CommandType { return CmdSetComputeRoot32BitConstants }

func (c SetComputeRoot32BitConstantsCommand) String() string {
	return fmt.Sprintf("SetComputeRoot32BitConstants(param=%d, offset=%d, %v)", c.Param, c.DestOffset, c.Values)
}

// SetComputeRootDescriptorTableCommand binds a descriptor table.
type SetComputeRootDescriptorTableCommand struct {
	Param uint32
	Base  gpucore.DescriptorHandle
}

// Type implements Command.
func (SetComputeRootDescriptorTableCommand) Type() CommandType {
	return CmdSetComputeRootDescriptorTable
}

func (c SetComputeRootDescriptorTableCommand) String() string {
	return fmt.Sprintf("SetComputeRootDescriptorTable(param=%d, base=%d)", c.Param, c.Base.Ptr)
}

// SetPipelineStateCommand binds a compute pipeline.
type SetPipelineStateCommand struct {
	Pipeline gpucore.PipelineState
}

// Type implements Command.
func (SetPipelineStateCommand) Type() CommandType { return CmdSetPipelineState }

func (c SetPipelineStateCommand) String() string {
	if p, ok := c.Pipeline.(*PipelineState); ok {
		return "SetPipelineState(" + p.label + ")"
	}
	return "SetPipelineState(?)"
}

// DispatchCommand is a compute dispatch.
type DispatchCommand struct {
	X, Y, Z uint32
}

// Type implements Command.
func (DispatchCommand) Type() CommandType { return CmdDispatch }

func (c DispatchCommand) String() string {
	return fmt.Sprintf("Dispatch(%d, %d, %d)", c.X, c.Y, c.Z)
}

// RSSetShadingRateCommand sets the per-draw rate and combiners.
type RSSetShadingRateCommand struct {
	Base      gpucore.ShadingRate
	Combiners gpucore.Combiners
}

// Type implements Command.
func (RSSetShadingRateCommand) Type() CommandType { return CmdRSSetShadingRate }

func (c RSSetShadingRateCommand) String() string {
	return fmt.Sprintf("RSSetShadingRate(%s, %s/%s)", c.Base, c.Combiners[0], c.Combiners[1])
}

// RSSetShadingRateImageCommand binds the shading-rate image. A nil Image
// unbinds it.
type RSSetShadingRateImageCommand struct {
	Image gpucore.Resource
}

// Type implements Command.
func (RSSetShadingRateImageCommand) Type() CommandType { return CmdRSSetShadingRateImage }

func (c RSSetShadingRateImageCommand) String() string {
	return "RSSetShadingRateImage(" + labelOf(c.Image) + ")"
}

func labelOf(r gpucore.Resource) string {
	if r == nil {
		return "nil"
	}
	return r.Label()
}
