// Command vrsmask previews the shading-rate mask of a still image.
//
// The image is classified on the CPU with the same heuristic the GPU program
// uses, upscaled, tinted by rate and written as PNG.
//
//	vrsmask -tile 16 -grid -legend -o out.png frame.webp
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"slices"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/config"
	"github.com/gogpu/vrs/gpucore"
	"github.com/gogpu/vrs/internal/clilog"
	"github.com/gogpu/vrs/internal/maskref"
)

func main() {
	var (
		output     = flag.String("o", "mask.png", "output PNG")
		configPath = flag.String("config", "", "TOML tuning file")
		tile       = flag.Uint("tile", 8, "shading-rate tile size (8 or 16)")
		scale      = flag.Float64("scale", 1, "upscale factor of the overlay")
		grid       = flag.Bool("grid", false, "draw the tile grid")
		legend     = flag.Bool("legend", false, "draw the rate legend")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := clilog.New(os.Stderr, "vrsmask", *verbose)
	vrs.SetLogger(log)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vrsmask [flags] image")
		flag.PrintDefaults()
		os.Exit(2)
	}
	err := run(log, flag.Arg(0), *output, *configPath, uint32(*tile), *scale, *grid, *legend)
	if err != nil {
		log.Error("vrsmask failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, input, output, configPath string, tile uint32, scale float64, grid, legend bool) error {
	if tile != 8 && tile != 16 {
		return fmt.Errorf("%w: %d", vrs.ErrUnsupportedTileSize, tile)
	}
	if scale < 1 {
		return fmt.Errorf("scale %v < 1", scale)
	}

	src, format, err := decode(input)
	if err != nil {
		return err
	}
	b := src.Bounds()
	log.Debug("decoded", "path", input, "format", format, "size", b.Size())

	cfg := vrs.DefaultConfig()
	if configPath != "" {
		tun, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := tun.Apply(&cfg); err != nil {
			return err
		}
	}
	cfg.BufferWidth, cfg.BufferHeight = uint32(b.Dx()), uint32(b.Dy())
	upW, upH := int(float64(b.Dx())*scale), int(float64(b.Dy())*scale)
	cfg.UpscaleWidth, cfg.UpscaleHeight = uint32(upW), uint32(upH)
	// A still image has no motion.
	cfg.UseMotionVectors = false

	pool := maskref.NewPool(0)
	defer pool.Close()
	mask, err := pool.Compute(maskref.ParamsFromConfig(&cfg, tile), maskref.Inputs{Color: maskref.PackRGBA(src)})
	if err != nil {
		return err
	}
	report(log, mask)

	dst := maskref.Upscale(src, upW, upH)
	if err := maskref.Overlay(mask, cfg.BufferWidth, cfg.BufferHeight, dst, grid); err != nil {
		return err
	}
	if legend {
		maskref.Legend(dst, image.Pt(8, 8))
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("wrote overlay", "path", output, "width", upW, "height", upH)
	return nil
}

func decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, format, nil
}

func report(log *slog.Logger, m *maskref.Mask) {
	hist := m.Histogram()
	rates := make([]gpucore.ShadingRate, 0, len(hist))
	for r := range hist {
		rates = append(rates, r)
	}
	slices.Sort(rates)

	total := float64(len(m.Rates))
	for _, r := range rates {
		log.Info("rate", "rate", r.String(), "tiles", hist[r], "share", fmt.Sprintf("%.1f%%", 100*float64(hist[r])/total))
	}
}
