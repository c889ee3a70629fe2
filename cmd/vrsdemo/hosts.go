package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/backend/wgpu"
	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/recording"
)

// Descriptor heap slots used by the demo hosts.
const (
	slotColor = iota
	slotMotion
	slotUpscaledMotion
	slotMask
	heapSize
)

type recordingHost struct {
	dev  *recording.Device
	list *recording.CommandList
}

func newRecordingHost(profile string, cfg *vrs.Config) (*recordingHost, error) {
	dev, err := recording.NewDeviceFromProfile(profile)
	if err != nil {
		return nil, err
	}
	heap := recording.NewDescriptorHeap(heapSize)
	heap.SetUAV(slotColor, recording.NewResource("color", gpucore.ResourceStateUnorderedAccess))
	heap.SetUAV(slotMotion, recording.NewResource("motion", gpucore.ResourceStateUnorderedAccess))
	heap.SetUAV(slotUpscaledMotion, recording.NewResource("upscaled_motion", gpucore.ResourceStateUnorderedAccess))
	mask := recording.NewResource("mask", gpucore.ResourceStateShadingRateSource)
	heap.SetUAV(slotMask, mask)

	h := &recordingHost{dev: dev, list: recording.NewCommandList()}
	cfg.Device = dev
	cfg.UAVHeap = heap
	cfg.MaskBuffer = mask
	cfg.CommandList = h.list
	return h, nil
}

func (h *recordingHost) Frame(ctrl *vrs.Controller, cfg *vrs.Config, n int) error {
	h.list.Reset()
	if err := recordFrame(ctrl, cfg); err != nil {
		return err
	}
	if err := h.list.Err(); err != nil {
		return fmt.Errorf("frame %d: %w", n, err)
	}
	fmt.Fprintf(os.Stdout, "frame %d (%d commands)\n%s", n, h.list.Len(), h.list)
	h.list.Execute()
	return nil
}

func (h *recordingHost) Close() {
	if err := h.dev.Err(); err != nil {
		vrs.Logger().Warn("recording device reported errors", "err", err)
	}
	if n := h.dev.LiveObjects(); n != 0 {
		vrs.Logger().Warn("objects not released", "count", n)
	}
}

// noopHost runs frames through backend/wgpu on the hal noop device.
type noopHost struct {
	instance hal.Instance
	device   hal.Device
	dev      *wgpu.Device
	heap     *wgpu.DescriptorHeap
	buffers  []*wgpu.Buffer
	mask     *wgpu.Buffer
	color    *wgpu.Buffer
}

func newNoopHost(cfg *vrs.Config) (*noopHost, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("noop: no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("noop open: %w", err)
	}

	h := &noopHost{
		instance: instance,
		device:   open.Device,
		dev:      wgpu.NewDevice(open.Device, open.Queue),
		heap:     wgpu.NewDescriptorHeap(heapSize),
	}
	pixels := uint64(cfg.BufferWidth) * uint64(cfg.BufferHeight)
	upPixels := uint64(cfg.UpscaleWidth) * uint64(cfg.UpscaleHeight)
	tiles := uint64(cfg.BufferWidth/8+1) * uint64(cfg.BufferHeight/8+1)
	specs := []struct {
		slot  int
		label string
		size  uint64
		state gpucore.ResourceState
	}{
		{slotColor, "color", pixels * 4, gpucore.ResourceStateUnorderedAccess},
		{slotMotion, "motion", pixels * 8, gpucore.ResourceStateUnorderedAccess},
		{slotUpscaledMotion, "upscaled_motion", upPixels * 8, gpucore.ResourceStateUnorderedAccess},
		{slotMask, "mask", tiles * 4, gpucore.ResourceStateShadingRateSource},
	}
	for _, s := range specs {
		b, err := h.dev.CreateBuffer(s.label, s.size, s.state)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.buffers = append(h.buffers, b)
		h.heap.SetUAV(s.slot, b)
	}
	h.color, h.mask = h.heap.UAV(slotColor), h.heap.UAV(slotMask)

	cfg.Device = h.dev
	cfg.UAVHeap = h.heap
	cfg.MaskBuffer = h.mask
	return h, nil
}

func (h *noopHost) Frame(ctrl *vrs.Controller, cfg *vrs.Config, n int) error {
	list, err := h.dev.NewCommandList(fmt.Sprintf("frame%d", n))
	if err != nil {
		return err
	}
	defer list.Release()
	cfg.CommandList = list

	if err := ctrl.ComputeMask(cfg); err != nil {
		return fmt.Errorf("compute mask: %w", err)
	}
	// The overlay table starts with the mask followed by the color target.
	h.heap.SetUAV(0, h.mask)
	h.heap.SetUAV(1, h.color)
	err = ctrl.DebugOverlay(cfg)
	h.heap.SetUAV(slotColor, h.color)
	h.heap.SetUAV(slotMotion, h.buffers[slotMotion])
	if err != nil {
		return fmt.Errorf("debug overlay: %w", err)
	}
	if err := ctrl.SetScreenSpaceCombiners(cfg); err != nil {
		return err
	}
	if err := ctrl.ApplyMask(cfg); err != nil {
		return err
	}
	rate, combiners := list.ShadingRate()

	start := time.Now()
	if err := list.Submit(5 * time.Second); err != nil {
		return fmt.Errorf("frame %d: %w", n, err)
	}
	vrs.Logger().Info("frame submitted",
		"frame", n,
		"dispatches", list.Dispatches(),
		"rate", rate.String(),
		"combiners", fmt.Sprintf("%s/%s", combiners[0], combiners[1]),
		"image", list.ShadingRateImage() != nil,
		"elapsed", time.Since(start))
	return nil
}

func (h *noopHost) Close() {
	if err := h.dev.Flush(); err != nil {
		vrs.Logger().Warn("flush before teardown", "err", err)
	}
	for _, b := range h.buffers {
		b.Release()
	}
	h.device.Destroy()
	h.instance.Destroy()
}
