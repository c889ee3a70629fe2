package gpucore

import (
	"errors"
	"reflect"
	"testing"
)

func maskLayout(version RootSignatureVersion) *RootSignatureDesc {
	return &RootSignatureDesc{
		Version: version,
		Parameters: []RootParameter{
			ConstantsParameter(13, 0),
			TableParameter(
				DescriptorRange{Type: DescriptorRangeUAV, NumDescriptors: 4},
				DescriptorRange{Type: DescriptorRangeCBV, NumDescriptors: 13, Flags: DescriptorRangeFlagDataStatic},
			),
		},
	}
}

func TestRootSignatureRoundTrip(t *testing.T) {
	desc := maskLayout(RootSignatureVersion1_1)

	blob, err := SerializeRootSignature(desc)
	if err != nil {
		t.Fatalf("SerializeRootSignature failed: %v", err)
	}
	got, err := DeserializeRootSignature(blob)
	if err != nil {
		t.Fatalf("DeserializeRootSignature failed: %v", err)
	}
	if !reflect.DeepEqual(got, desc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, desc)
	}
	if got.Cost() != 14 {
		t.Errorf("Cost() = %d, want 14", got.Cost())
	}
	if n := got.CountRanges(DescriptorRangeUAV); n != 4 {
		t.Errorf("CountRanges(UAV) = %d, want 4", n)
	}
	if n := got.CountRanges(DescriptorRangeCBV); n != 13 {
		t.Errorf("CountRanges(CBV) = %d, want 13", n)
	}
}

func TestRootSignatureVersion10DropsFlags(t *testing.T) {
	blob, err := SerializeRootSignature(maskLayout(RootSignatureVersion1_0))
	if err != nil {
		t.Fatalf("SerializeRootSignature failed: %v", err)
	}
	got, err := DeserializeRootSignature(blob)
	if err != nil {
		t.Fatalf("DeserializeRootSignature failed: %v", err)
	}
	for _, r := range got.Parameters[1].Ranges {
		if r.Flags != DescriptorRangeFlagNone {
			t.Errorf("range %v kept flags 0x%x in a 1.0 blob", r.Type, r.Flags)
		}
	}
}

func TestRootSignatureValidate(t *testing.T) {
	tests := []struct {
		name string
		desc *RootSignatureDesc
	}{
		{"nil", nil},
		{"unknown version", &RootSignatureDesc{Version: 7, Parameters: []RootParameter{ConstantsParameter(1, 0)}}},
		{"no parameters", &RootSignatureDesc{Version: RootSignatureVersion1_1}},
		{"zero constants", &RootSignatureDesc{Version: RootSignatureVersion1_1, Parameters: []RootParameter{ConstantsParameter(0, 0)}}},
		{"empty table", &RootSignatureDesc{Version: RootSignatureVersion1_1, Parameters: []RootParameter{TableParameter()}}},
		{"empty range", &RootSignatureDesc{Version: RootSignatureVersion1_1, Parameters: []RootParameter{
			TableParameter(DescriptorRange{Type: DescriptorRangeUAV}),
		}}},
		{"too expensive", &RootSignatureDesc{Version: RootSignatureVersion1_1, Parameters: []RootParameter{
			ConstantsParameter(60, 0), ConstantsParameter(5, 1),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SerializeRootSignature(tt.desc)
			if !errors.Is(err, ErrInvalidRootSignature) {
				t.Errorf("SerializeRootSignature error = %v, want ErrInvalidRootSignature", err)
			}
		})
	}
}

func TestDeserializeRootSignatureMalformed(t *testing.T) {
	good, err := SerializeRootSignature(maskLayout(RootSignatureVersion1_1))
	if err != nil {
		t.Fatalf("SerializeRootSignature failed: %v", err)
	}

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"truncated", good[:len(good)-3]},
		{"trailing", append(append([]byte{}, good...), 0, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeserializeRootSignature(tt.blob); !errors.Is(err, ErrMalformedRootSignature) {
				t.Errorf("DeserializeRootSignature error = %v, want ErrMalformedRootSignature", err)
			}
		})
	}
}
