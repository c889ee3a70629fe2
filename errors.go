package vrs

import (
	"errors"
	"fmt"
)

// Controller errors. Every error returned by a Controller method matches
// exactly one of these with errors.Is; device failures are wrapped so the
// underlying cause stays reachable.
var (
	// ErrRootSignature is returned when a root signature cannot be
	// serialized or created by the device.
	ErrRootSignature = errors.New("vrs: root signature creation failed")

	// ErrPipelineState is returned when a compute pipeline cannot be created.
	ErrPipelineState = errors.New("vrs: pipeline state creation failed")

	// ErrInvalidArgument is returned when a required command list, mask
	// buffer, descriptor heap or shader program is missing, or when a
	// combiner is not a declared value.
	ErrInvalidArgument = errors.New("vrs: invalid argument")

	// ErrInvalidDevice is returned when the device is missing or differs
	// from the one the controller was initialized with.
	ErrInvalidDevice = errors.New("vrs: invalid device")

	// ErrNotSupported is returned when the device lacks the shading-rate
	// tier an operation needs.
	ErrNotSupported = errors.New("vrs: variable-rate shading not supported")

	// ErrAlreadyInitialized is returned by Initialize on an initialized
	// controller. The controller is left unchanged.
	ErrAlreadyInitialized = errors.New("vrs: already initialized")

	// ErrNotInitialized is returned by per-frame operations and Release on
	// a controller that is not initialized.
	ErrNotInitialized = errors.New("vrs: not initialized")

	// ErrUnsupportedTileSize is returned when the device reports a
	// shading-rate tile size with no mask program.
	ErrUnsupportedTileSize = fmt.Errorf("%w: unsupported shading-rate tile size", ErrNotSupported)
)

// Code is a numeric classification of controller results, for hosts that
// forward results across an API boundary.
type Code int

// Result codes.
const (
	CodeSuccess Code = iota
	CodeRootSigFail
	CodePsoFail
	CodeInvalidArgument
	CodeInvalidDevice
	CodeNotSupported
	CodeAlreadyInitialized
	CodeNotInitialized

	// CodeUnknown classifies errors that did not come from a Controller.
	CodeUnknown
)

var codeNames = [...]string{
	CodeSuccess:            "success",
	CodeRootSigFail:        "rootsig-fail",
	CodePsoFail:            "pso-fail",
	CodeInvalidArgument:    "invalid-argument",
	CodeInvalidDevice:      "invalid-device",
	CodeNotSupported:       "not-supported",
	CodeAlreadyInitialized: "already-initialized",
	CodeNotInitialized:     "not-initialized",
	CodeUnknown:            "unknown",
}

// String returns the code name.
func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

var codeErrors = []struct {
	err  error
	code Code
}{
	{ErrRootSignature, CodeRootSigFail},
	{ErrPipelineState, CodePsoFail},
	{ErrInvalidArgument, CodeInvalidArgument},
	{ErrInvalidDevice, CodeInvalidDevice},
	{ErrNotSupported, CodeNotSupported},
	{ErrAlreadyInitialized, CodeAlreadyInitialized},
	{ErrNotInitialized, CodeNotInitialized},
}

// CodeOf classifies err. A nil error is CodeSuccess.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return ce.code
		}
	}
	return CodeUnknown
}

// IsInformational reports whether err only signals a lifecycle ordering
// mistake (initialize twice, release or use before initialize). Such calls
// leave the controller unchanged.
func IsInformational(err error) bool {
	switch CodeOf(err) {
	case CodeAlreadyInitialized, CodeNotInitialized:
		return true
	}
	return false
}
