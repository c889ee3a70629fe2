package recording

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/vrs/gpucore"
)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	profiles   = make(map[string][]Option)
)

// Built-in profiles.
const (
	// ProfileTier2Tile8 is tier-2 hardware with 8x8 tiles and every
	// extension, as reported by current integrated GPUs.
	ProfileTier2Tile8 = "tier2-tile8"

	// ProfileTier2Tile16 is tier-2 hardware with 16x16 tiles.
	ProfileTier2Tile16 = "tier2-tile16"

	// ProfileTier1 supports per-draw rates only.
	ProfileTier1 = "tier1"

	// ProfileNone reports no variable-rate shading.
	ProfileNone = "none"
)

func init() {
	RegisterProfile(ProfileTier2Tile8,
		WithTier(gpucore.Tier2), WithTileSize(8), WithAdditionalShadingRates(true),
		WithSumCombiner(true), WithMeshShaderPerPrimitive(true))
	RegisterProfile(ProfileTier2Tile16,
		WithTier(gpucore.Tier2), WithTileSize(16), WithAdditionalShadingRates(true))
	RegisterProfile(ProfileTier1, WithTier(gpucore.Tier1), WithAdditionalShadingRates(true))
	RegisterProfile(ProfileNone)
}

// RegisterProfile registers a named device configuration.
//
// RegisterProfile panics if a profile with the same name is already
// registered, so duplicate registrations are caught during program
// initialization rather than silently overwriting each other.
func RegisterProfile(name string, opts ...Option) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := profiles[name]; dup {
		panic("recording: RegisterProfile called twice for " + name)
	}
	profiles[name] = append([]Option(nil), opts...)
}

// UnregisterProfile removes a profile. Primarily useful for tests.
func UnregisterProfile(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(profiles, name)
}

// NewDeviceFromProfile creates a device from a registered profile. Extra
// options are applied after the profile's own.
func NewDeviceFromProfile(name string, extra ...Option) (*Device, error) {
	registryMu.RLock()
	opts, ok := profiles[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("recording: unknown device profile %q", name)
	}
	all := append(append([]Option(nil), opts...), extra...)
	return NewDevice(all...), nil
}

// Profiles returns the registered profile names in sorted order.
func Profiles() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
