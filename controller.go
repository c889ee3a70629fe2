package vrs

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/shaders"
)

// Controller drives variable-rate shading for one device.
//
// A device (or swap-chain context) owns exactly one Controller. The
// controller exclusively owns the root signatures and pipelines it creates
// and releases them in [Controller.Release]; the device, descriptor heap,
// mask buffer and command list in [Config] are borrowed.
//
// Lifecycle: [Controller.CheckSupport] (optional), [Controller.Initialize]
// once, then per frame [Controller.ComputeMask], [Controller.DebugOverlay],
// [Controller.ApplyMask], host draws, [Controller.ResetMask] and the
// combiner setters, and finally [Controller.Release].
//
// A Controller is not safe for concurrent use. All calls recording into a
// command list must come from the goroutine that owns the list.
type Controller struct {
	id   uuid.UUID
	opts controllerOptions

	// device is the device captured at Initialize; nil when uninitialized.
	device  gpucore.Device
	objects *pipelineObjects

	caps   Capabilities
	probed bool
}

// NewController creates an uninitialized controller.
func NewController(opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller{
		id:   uuid.New(),
		opts: o,
	}
}

// ID returns the identifier the controller attaches to its log records.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Initialized reports whether Initialize succeeded and Release has not
// been called since.
func (c *Controller) Initialized() bool {
	return c.objects != nil
}

// Capabilities returns the last probed snapshot. It is the zero value until
// CheckSupport or Initialize probes a device, and it survives Release.
func (c *Controller) Capabilities() Capabilities {
	return c.caps
}

func (c *Controller) logger() *slog.Logger {
	l := c.opts.logger
	if l == nil {
		l = Logger()
	}
	return l.With("controller", c.id.String())
}

func (c *Controller) library() shaders.Library {
	if c.opts.library != nil {
		return c.opts.library
	}
	return shaders.Embedded()
}

// CheckSupport probes cfg.Device and returns its snapshot together with
// ErrNotSupported when the device is below tier 2 or reports a tile size
// without a mask program.
//
// On an uninitialized controller the snapshot is also stored. Once
// initialized, the snapshot taken by Initialize is kept until Release and
// CheckSupport only reports.
func (c *Controller) CheckSupport(cfg *Config) (Capabilities, error) {
	if cfg == nil || cfg.Device == nil {
		return Capabilities{}, ErrInvalidDevice
	}
	caps, err := probe(cfg.Device, c.logger())
	if err != nil {
		return caps, err
	}
	if !c.Initialized() {
		c.caps, c.probed = caps, true
	}
	return caps, supportError(caps)
}

func supportError(caps Capabilities) error {
	if !caps.Tier2() {
		return fmt.Errorf("%w: device reports %s", ErrNotSupported, caps.Tier)
	}
	if _, err := shaders.ForTileSize(caps.TileSize); err != nil {
		return fmt.Errorf("%w: %d", ErrUnsupportedTileSize, caps.TileSize)
	}
	return nil
}

// Initialize probes the device and creates the root signatures and
// pipelines. On an initialized controller it returns ErrAlreadyInitialized
// and changes nothing. On any other failure the objects created so far are
// released and the controller stays uninitialized.
func (c *Controller) Initialize(cfg *Config) error {
	if c.Initialized() {
		return ErrAlreadyInitialized
	}
	if cfg == nil || cfg.Device == nil {
		return ErrInvalidDevice
	}

	log := c.logger()
	caps, err := probe(cfg.Device, log)
	if err != nil {
		return err
	}
	c.caps, c.probed = caps, true

	if err := supportError(caps); err != nil {
		log.Info("vrs: device not supported", "tier", caps.Tier, "tileSize", caps.TileSize)
		return err
	}
	perm, _ := shaders.ForTileSize(caps.TileSize)

	objects, err := buildPipelineObjects(cfg.Device, c.library(), caps.RootSignatureVersion, perm)
	if err != nil {
		log.Warn("vrs: initialize failed", "err", err)
		return err
	}

	c.device = cfg.Device
	c.objects = objects
	log.Info("vrs: initialized",
		"tier", caps.Tier,
		"tileSize", caps.TileSize,
		"permutation", perm,
		"rootSignature", caps.RootSignatureVersion)
	return nil
}

// Release destroys the pipelines and root signatures and drops the device
// reference. It returns ErrNotInitialized when there is nothing to release.
// The capability snapshot is kept.
func (c *Controller) Release() error {
	if !c.Initialized() {
		return ErrNotInitialized
	}
	c.objects.release()
	c.objects = nil
	c.device = nil
	c.logger().Info("vrs: released")
	return nil
}

// requirement selects the per-call arguments a stage needs.
type requirement uint8

const (
	needCommandList requirement = 1 << iota
	needMaskBuffer
	needHeap
	needDevice
)

// precheck validates a per-frame call in a fixed order: tier, command list,
// mask buffer, descriptor heap, device, lifecycle, device identity.
//
// The tier is taken from the stored snapshot. A controller that never
// probed skips the tier test and reports ErrNotInitialized instead.
func (c *Controller) precheck(cfg *Config, min Tier, req requirement) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidArgument)
	}
	if c.probed && c.caps.Tier < min {
		return fmt.Errorf("%w: %s required, device reports %s", ErrNotSupported, min, c.caps.Tier)
	}
	if req&needCommandList != 0 && cfg.CommandList == nil {
		return fmt.Errorf("%w: nil command list", ErrInvalidArgument)
	}
	if req&needMaskBuffer != 0 && cfg.MaskBuffer == nil {
		return fmt.Errorf("%w: nil mask buffer", ErrInvalidArgument)
	}
	if req&needHeap != 0 && cfg.UAVHeap == nil {
		return fmt.Errorf("%w: nil descriptor heap", ErrInvalidArgument)
	}
	if req&needDevice != 0 && cfg.Device == nil {
		return ErrInvalidDevice
	}
	if !c.Initialized() {
		return ErrNotInitialized
	}
	if cfg.Device != nil && cfg.Device != c.device {
		return fmt.Errorf("%w: device differs from the one used at initialize", ErrInvalidDevice)
	}
	return nil
}
