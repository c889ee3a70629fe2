package recording

import (
	"testing"

	"github.com/gogpu/vrs/gpucore"
)

func TestBuiltinProfiles(t *testing.T) {
	tests := []struct {
		name string
		tier gpucore.Tier
		tile uint32
	}{
		{ProfileTier2Tile8, gpucore.Tier2, 8},
		{ProfileTier2Tile16, gpucore.Tier2, 16},
		{ProfileTier1, gpucore.Tier1, 0},
		{ProfileNone, gpucore.TierNotSupported, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := NewDeviceFromProfile(tt.name)
			if err != nil {
				t.Fatalf("NewDeviceFromProfile failed: %v", err)
			}
			opts, err := dev.QueryShadingRateOptions()
			if err != nil {
				t.Fatalf("QueryShadingRateOptions failed: %v", err)
			}
			if opts.Tier != tt.tier || opts.ShadingRateImageTileSize != tt.tile {
				t.Errorf("options = %+v, want tier %v tile %d", opts, tt.tier, tt.tile)
			}
		})
	}
}

func TestRegisterProfile(t *testing.T) {
	RegisterProfile("test-profile", WithTier(gpucore.Tier2), WithTileSize(16))
	defer UnregisterProfile("test-profile")

	found := false
	for _, name := range Profiles() {
		if name == "test-profile" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Profiles() = %v, missing test-profile", Profiles())
	}

	// Extra options override the profile.
	dev, err := NewDeviceFromProfile("test-profile", WithTileSize(8))
	if err != nil {
		t.Fatalf("NewDeviceFromProfile failed: %v", err)
	}
	opts, _ := dev.QueryShadingRateOptions()
	if opts.ShadingRateImageTileSize != 8 {
		t.Errorf("tile size = %d, want 8", opts.ShadingRateImageTileSize)
	}
}

func TestRegisterProfileDuplicatePanics(t *testing.T) {
	RegisterProfile("dup")
	defer UnregisterProfile("dup")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterProfile("dup")
}

func TestNewDeviceFromUnknownProfile(t *testing.T) {
	if _, err := NewDeviceFromProfile("no-such-profile"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
