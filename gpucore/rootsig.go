// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Root signature errors.
var (
	// ErrInvalidRootSignature is returned when a layout cannot be serialized.
	ErrInvalidRootSignature = errors.New("gpucore: invalid root signature")

	// ErrMalformedRootSignature is returned when a blob cannot be decoded.
	ErrMalformedRootSignature = errors.New("gpucore: malformed root signature blob")
)

// MaxRootSignatureCost is the root signature size limit in 32-bit values.
// Each inline constant costs one value and each descriptor table costs one.
const MaxRootSignatureCost = 64

// DescriptorRangeType is the kind of view in a descriptor range.
type DescriptorRangeType uint8

// Descriptor range types.
const (
	DescriptorRangeSRV     DescriptorRangeType = 0
	DescriptorRangeUAV     DescriptorRangeType = 1
	DescriptorRangeCBV     DescriptorRangeType = 2
	DescriptorRangeSampler DescriptorRangeType = 3
)

// String returns the HLSL register class of the range type.
func (t DescriptorRangeType) String() string {
	switch t {
	case DescriptorRangeSRV:
		return "srv"
	case DescriptorRangeUAV:
		return "uav"
	case DescriptorRangeCBV:
		return "cbv"
	case DescriptorRangeSampler:
		return "sampler"
	}
	return fmt.Sprintf("DescriptorRangeType(%d)", uint8(t))
}

// DescriptorRangeFlags are version 1.1 volatility hints.
type DescriptorRangeFlags uint32

// Descriptor range flags.
const (
	DescriptorRangeFlagNone       DescriptorRangeFlags = 0
	DescriptorRangeFlagDataStatic DescriptorRangeFlags = 0x8
)

// DescriptorRange is a run of consecutive descriptors of one type.
type DescriptorRange struct {
	Type               DescriptorRangeType
	NumDescriptors     uint32
	BaseShaderRegister uint32
	RegisterSpace      uint32
	Flags              DescriptorRangeFlags
}

// RootParameterType is the kind of a root parameter.
type RootParameterType uint8

// Root parameter types.
const (
	RootParameterDescriptorTable RootParameterType = 0
	RootParameterConstants       RootParameterType = 1
)

// RootConstants describes inline 32-bit constants.
type RootConstants struct {
	ShaderRegister uint32
	RegisterSpace  uint32
	Num32BitValues uint32
}

// RootParameter is a single slot of a root signature.
type RootParameter struct {
	Type      RootParameterType
	Constants RootConstants
	Ranges    []DescriptorRange
}

// ConstantsParameter builds a root parameter of num inline constants bound
// to register b<register>.
func ConstantsParameter(num, register uint32) RootParameter {
	return RootParameter{
		Type:      RootParameterConstants,
		Constants: RootConstants{ShaderRegister: register, Num32BitValues: num},
	}
}

// TableParameter builds a descriptor table root parameter.
func TableParameter(ranges ...DescriptorRange) RootParameter {
	return RootParameter{Type: RootParameterDescriptorTable, Ranges: ranges}
}

// RootSignatureDesc describes a root signature layout.
type RootSignatureDesc struct {
	Version    RootSignatureVersion
	Parameters []RootParameter
}

// Cost returns the size of the root signature in 32-bit values.
func (d *RootSignatureDesc) Cost() uint32 {
	var cost uint32
	for _, p := range d.Parameters {
		if p.Type == RootParameterConstants {
			cost += p.Constants.Num32BitValues
		} else {
			cost++
		}
	}
	return cost
}

// CountRanges returns the number of descriptors of type t across all tables.
func (d *RootSignatureDesc) CountRanges(t DescriptorRangeType) uint32 {
	var n uint32
	for _, p := range d.Parameters {
		for _, r := range p.Ranges {
			if r.Type == t {
				n += r.NumDescriptors
			}
		}
	}
	return n
}

// Validate checks that the layout can be serialized.
func (d *RootSignatureDesc) Validate() error {
	if d.Version != RootSignatureVersion1_0 && d.Version != RootSignatureVersion1_1 {
		return fmt.Errorf("%w: unknown version %d", ErrInvalidRootSignature, d.Version)
	}
	if len(d.Parameters) == 0 {
		return fmt.Errorf("%w: no parameters", ErrInvalidRootSignature)
	}
	for i, p := range d.Parameters {
		switch p.Type {
		case RootParameterConstants:
			if p.Constants.Num32BitValues == 0 {
				return fmt.Errorf("%w: parameter %d has no constants", ErrInvalidRootSignature, i)
			}
			if len(p.Ranges) != 0 {
				return fmt.Errorf("%w: constants parameter %d has ranges", ErrInvalidRootSignature, i)
			}
		case RootParameterDescriptorTable:
			if len(p.Ranges) == 0 {
				return fmt.Errorf("%w: table parameter %d is empty", ErrInvalidRootSignature, i)
			}
			for j, r := range p.Ranges {
				if r.Type > DescriptorRangeSampler {
					return fmt.Errorf("%w: parameter %d range %d has unknown type", ErrInvalidRootSignature, i, j)
				}
				if r.NumDescriptors == 0 {
					return fmt.Errorf("%w: parameter %d range %d is empty", ErrInvalidRootSignature, i, j)
				}
			}
		default:
			return fmt.Errorf("%w: parameter %d has unknown type %d", ErrInvalidRootSignature, i, p.Type)
		}
	}
	if cost := d.Cost(); cost > MaxRootSignatureCost {
		return fmt.Errorf("%w: cost %d exceeds %d", ErrInvalidRootSignature, cost, MaxRootSignatureCost)
	}
	return nil
}

var rootSignatureMagic = [4]byte{'V', 'R', 'S', 'R'}

// SerializeRootSignature validates desc and encodes it into a blob.
// Version 1.0 has no range flags; they are dropped when serializing for it.
func SerializeRootSignature(desc *RootSignatureDesc) ([]byte, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidRootSignature)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	buf := make([]byte, 0, 64)
	buf = append(buf, rootSignatureMagic[:]...)
	buf = le.AppendUint32(buf, uint32(desc.Version))
	buf = le.AppendUint32(buf, uint32(len(desc.Parameters)))
	for _, p := range desc.Parameters {
		buf = le.AppendUint32(buf, uint32(p.Type))
		if p.Type == RootParameterConstants {
			buf = le.AppendUint32(buf, p.Constants.ShaderRegister)
			buf = le.AppendUint32(buf, p.Constants.RegisterSpace)
			buf = le.AppendUint32(buf, p.Constants.Num32BitValues)
			continue
		}
		buf = le.AppendUint32(buf, uint32(len(p.Ranges)))
		for _, r := range p.Ranges {
			flags := r.Flags
			if desc.Version == RootSignatureVersion1_0 {
				flags = DescriptorRangeFlagNone
			}
			buf = le.AppendUint32(buf, uint32(r.Type))
			buf = le.AppendUint32(buf, r.NumDescriptors)
			buf = le.AppendUint32(buf, r.BaseShaderRegister)
			buf = le.AppendUint32(buf, r.RegisterSpace)
			buf = le.AppendUint32(buf, uint32(flags))
		}
	}
	return buf, nil
}

// blobReader decodes little-endian words and remembers the first error.
type blobReader struct {
	data []byte
	off  int
	err  error
}

func (r *blobReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if len(r.data)-r.off < 4 {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrMalformedRootSignature, r.off)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// DeserializeRootSignature decodes a blob produced by SerializeRootSignature.
func DeserializeRootSignature(blob []byte) (*RootSignatureDesc, error) {
	if len(blob) < len(rootSignatureMagic) || [4]byte(blob[:4]) != rootSignatureMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedRootSignature)
	}
	r := &blobReader{data: blob, off: len(rootSignatureMagic)}

	desc := &RootSignatureDesc{Version: RootSignatureVersion(r.u32())}
	n := r.u32()
	if r.err == nil && n > MaxRootSignatureCost {
		return nil, fmt.Errorf("%w: %d parameters", ErrMalformedRootSignature, n)
	}
	for i := uint32(0); i < n && r.err == nil; i++ {
		p := RootParameter{Type: RootParameterType(r.u32())}
		if p.Type == RootParameterConstants {
			p.Constants = RootConstants{
				ShaderRegister: r.u32(),
				RegisterSpace:  r.u32(),
				Num32BitValues: r.u32(),
			}
		} else {
			count := r.u32()
			if r.err == nil && int(count)*20 > len(blob)-r.off {
				return nil, fmt.Errorf("%w: range count %d overruns blob", ErrMalformedRootSignature, count)
			}
			for j := uint32(0); j < count && r.err == nil; j++ {
				p.Ranges = append(p.Ranges, DescriptorRange{
					Type:               DescriptorRangeType(r.u32()),
					NumDescriptors:     r.u32(),
					BaseShaderRegister: r.u32(),
					RegisterSpace:      r.u32(),
					Flags:              DescriptorRangeFlags(r.u32()),
				})
			}
		}
		desc.Parameters = append(desc.Parameters, p)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(blob) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedRootSignature, len(blob)-r.off)
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRootSignature, err)
	}
	return desc, nil
}
