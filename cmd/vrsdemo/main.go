// Command vrsdemo records controller frames and prints them.
//
// With the recording backend every frame is printed as a command trace.
// With the noop backend the frame is encoded through backend/wgpu on the
// hal noop device and submitted.
//
//	vrsdemo -profile tier2-tile16 -overlay
//	vrsdemo -config vrs.toml -watch
//	vrsdemo -backend noop -shaders build/shaders
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/config"
	"github.com/gogpu/vrs/internal/clilog"
	"github.com/gogpu/vrs/recording"
	"github.com/gogpu/vrs/shaders"
)

type options struct {
	backend    string
	profile    string
	configPath string
	watch      bool
	shaderDir  string
	frames     int
	overlay    bool
	grid       bool
	width      uint
	height     uint
	upWidth    uint
	upHeight   uint
	verbose    bool
}

func main() {
	var o options
	flag.StringVar(&o.backend, "backend", "recording", "backend: recording or noop")
	flag.StringVar(&o.profile, "profile", recording.ProfileTier2Tile8,
		"device profile ("+strings.Join(recording.Profiles(), ", ")+")")
	flag.StringVar(&o.configPath, "config", "", "TOML tuning file")
	flag.BoolVar(&o.watch, "watch", false, "re-record a frame whenever -config changes")
	flag.StringVar(&o.shaderDir, "shaders", "", "directory of precompiled .spv programs")
	flag.IntVar(&o.frames, "frames", 1, "number of frames to record")
	flag.BoolVar(&o.overlay, "overlay", false, "record the debug overlay")
	flag.BoolVar(&o.grid, "grid", false, "draw the tile grid in the overlay")
	flag.UintVar(&o.width, "width", 1920, "render width")
	flag.UintVar(&o.height, "height", 1080, "render height")
	flag.UintVar(&o.upWidth, "upscale-width", 3840, "upscaled width")
	flag.UintVar(&o.upHeight, "upscale-height", 2160, "upscaled height")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Parse()

	log := clilog.New(os.Stderr, "vrsdemo", o.verbose)
	vrs.SetLogger(log)

	if err := run(log, o); err != nil {
		log.Error("vrsdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, o options) error {
	cfg := vrs.DefaultConfig()
	cfg.BufferWidth, cfg.BufferHeight = uint32(o.width), uint32(o.height)
	cfg.UpscaleWidth, cfg.UpscaleHeight = uint32(o.upWidth), uint32(o.upHeight)
	tun := config.FromConfig(&cfg)
	if o.configPath != "" {
		var err error
		if tun, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if err := o.tune(&cfg, tun); err != nil {
		return err
	}

	var opts []vrs.Option
	if o.shaderDir != "" {
		lib, err := shaders.LoadDir(o.shaderDir)
		if err != nil {
			return err
		}
		opts = append(opts, vrs.WithShaderLibrary(lib))
	}
	ctrl := vrs.NewController(opts...)

	var host frameHost
	switch o.backend {
	case "recording":
		h, err := newRecordingHost(o.profile, &cfg)
		if err != nil {
			return err
		}
		host = h
	case "noop":
		h, err := newNoopHost(&cfg)
		if err != nil {
			return err
		}
		host = h
	default:
		return fmt.Errorf("unknown backend %q", o.backend)
	}
	defer host.Close()

	caps, err := ctrl.CheckSupport(&cfg)
	log.Info("capabilities",
		"tier", caps.Tier.String(),
		"tile", caps.TileSize,
		"additional_rates", caps.AdditionalShadingRates,
		"sum_combiner", caps.SumCombiner,
		"root_signature", caps.RootSignatureVersion.String())
	if err != nil {
		return err
	}

	if err := ctrl.Initialize(&cfg); err != nil {
		return err
	}
	defer ctrl.Release()
	log.Info("controller ready", "id", ctrl.ID())

	for i := 0; i < o.frames; i++ {
		if err := host.Frame(ctrl, &cfg, i); err != nil {
			return err
		}
	}
	if !o.watch {
		return nil
	}
	if o.configPath == "" {
		return errors.New("-watch requires -config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	frame := o.frames
	log.Info("watching", "path", o.configPath)
	return config.Watch(ctx, o.configPath, func(tun config.Tuning, err error) {
		if err != nil {
			return
		}
		if err := o.tune(&cfg, tun); err != nil {
			log.Warn("tuning rejected", "err", err)
			return
		}
		if err := host.Frame(ctrl, &cfg, frame); err != nil {
			log.Error("frame failed", "frame", frame, "err", err)
		}
		frame++
	})
}

// tune applies tun to cfg. The -overlay and -grid flags win over the file.
func (o options) tune(cfg *vrs.Config, tun config.Tuning) error {
	if err := tun.Apply(cfg); err != nil {
		return err
	}
	if o.overlay {
		cfg.DebugOverlay = true
	}
	if o.grid {
		cfg.DebugGrid = true
	}
	return nil
}

// frameHost owns the GPU objects of one backend and records frames on it.
type frameHost interface {
	Frame(ctrl *vrs.Controller, cfg *vrs.Config, n int) error
	Close()
}

// recordFrame records the per-frame sequence a renderer would issue:
// mask, overlay, then the combiners and image around the scene draws.
func recordFrame(ctrl *vrs.Controller, cfg *vrs.Config) error {
	if err := ctrl.ComputeMask(cfg); err != nil {
		return fmt.Errorf("compute mask: %w", err)
	}
	if err := ctrl.DebugOverlay(cfg); err != nil {
		return fmt.Errorf("debug overlay: %w", err)
	}
	if err := ctrl.SetScreenSpaceCombiners(cfg); err != nil {
		return fmt.Errorf("combiners: %w", err)
	}
	if err := ctrl.ApplyMask(cfg); err != nil {
		return fmt.Errorf("apply mask: %w", err)
	}
	// Scene draws go here.
	if err := ctrl.ResetMask(cfg); err != nil {
		return fmt.Errorf("reset mask: %w", err)
	}
	return nil
}
