package vrs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeSuccess},
		{ErrRootSignature, CodeRootSigFail},
		{fmt.Errorf("%w: device lost", ErrPipelineState), CodePsoFail},
		{ErrInvalidArgument, CodeInvalidArgument},
		{ErrInvalidDevice, CodeInvalidDevice},
		{ErrNotSupported, CodeNotSupported},
		{ErrUnsupportedTileSize, CodeNotSupported},
		{ErrAlreadyInitialized, CodeAlreadyInitialized},
		{ErrNotInitialized, CodeNotInitialized},
		{errors.New("other"), CodeUnknown},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if got := CodeNotSupported.String(); got != "not-supported" {
		t.Errorf("String() = %q", got)
	}
	if got := Code(99).String(); got != "Code(99)" {
		t.Errorf("String() = %q", got)
	}
}

func TestIsInformational(t *testing.T) {
	for _, err := range []error{ErrAlreadyInitialized, ErrNotInitialized} {
		if !IsInformational(err) {
			t.Errorf("IsInformational(%v) = false", err)
		}
	}
	for _, err := range []error{nil, ErrNotSupported, ErrRootSignature, ErrInvalidDevice} {
		if IsInformational(err) {
			t.Errorf("IsInformational(%v) = true", err)
		}
	}
}
