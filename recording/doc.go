// Package recording is an in-memory implementation of the gpucore boundary.
//
// A recording [Device] answers capability queries from its options and
// creates root signatures and pipelines as plain values, validating the
// blobs and descriptors it receives. A [CommandList] captures every call as
// a typed [Command] instead of executing it, tracks resource states across
// barriers and reports ordering mistakes through [CommandList.Err].
//
// Recordings are inspectable (Commands, Dispatches, String) and can be
// replayed into any other gpucore.CommandList with [CommandList.Playback],
// which is how the demo forwards a traced frame to a real GPU backend.
//
// # Example
//
//	dev := recording.NewDevice(recording.WithTier(gpucore.Tier2), recording.WithTileSize(8))
//	cl := recording.NewCommandList()
//	mask := recording.NewResource("mask", gpucore.ResourceStateShadingRateSource)
//
//	ctrl := vrs.NewController()
//	cfg := vrs.DefaultConfig()
//	cfg.Device, cfg.CommandList, cfg.MaskBuffer = dev, cl, mask
//	cfg.UAVHeap = recording.NewDescriptorHeap(4)
//	_ = ctrl.Initialize(&cfg)
//	_ = ctrl.ComputeMask(&cfg)
//	fmt.Print(cl)
//
// # Device profiles
//
// Named device configurations are registered with [RegisterProfile] and
// created with [NewDeviceFromProfile], following the database/sql driver
// pattern. The package registers a few common hardware shapes in init.
package recording
