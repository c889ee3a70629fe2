// Package vrs is a content-adaptive variable-rate shading controller.
//
// Each frame, vrs decides how finely every screen tile must be shaded,
// writes that decision into a shading-rate mask with a compute dispatch,
// and binds the mask as the rasterizer's shading-rate image. Tiles with
// little luminance contrast (or that move quickly) are shaded at 2x or 4x
// coarser rates; detailed tiles keep full rate.
//
// # Quick Start
//
//	ctrl := vrs.NewController()
//	cfg := vrs.DefaultConfig()
//	cfg.Device = device
//	if err := ctrl.Initialize(&cfg); err != nil {
//	    if errors.Is(err, vrs.ErrNotSupported) {
//	        // render without VRS
//	    }
//	    return err
//	}
//	defer ctrl.Release()
//
//	// per frame
//	cfg.CommandList, cfg.UAVHeap, cfg.MaskBuffer = cl, heap, mask
//	cfg.BufferWidth, cfg.BufferHeight = 1920, 1080
//	cfg.UpscaleWidth, cfg.UpscaleHeight = 3840, 2160
//	_ = ctrl.ComputeMask(&cfg)
//	_ = ctrl.DebugOverlay(&cfg)
//	_ = ctrl.ApplyMask(&cfg)
//	_ = ctrl.SetScreenSpaceCombiners(&cfg)
//	// ... draw ...
//	_ = ctrl.ResetMask(&cfg)
//
// # Architecture
//
//	vrs.Controller ─── probe ──► gpucore.Device
//	      │         ─── build ──► root signatures + pipelines (shaders.Library)
//	      └─ per frame ─────────► gpucore.CommandList
//
// The device, command list, descriptor heap and mask buffer are owned by
// the host. The recording package provides an in-memory implementation for
// tests and traces; backend/wgpu maps the boundary onto gogpu/wgpu.
//
// # Descriptor heap layout
//
// The mask program reads the descriptor table at the heap's first slot:
// u0 color (RGBA8), u1 motion vectors, u2 upscaled motion vectors, u3 the
// shading-rate mask. The overlay program uses u0 mask and u1 the upscaled
// color target.
//
// # Errors
//
// Every method returns nil or an error matching one of the package's
// sentinel errors. [CodeOf] maps errors to numeric codes;
// [IsInformational] separates lifecycle ordering mistakes from failures.
package vrs
