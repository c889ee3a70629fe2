package main

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 * (x % 2))
			if x >= w/2 {
				v = 128
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := writePNG(t, 96, 48)
	out := filepath.Join(t.TempDir(), "out.png")

	if err := run(log, in, out, "", 16, 2, true, true); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 192 || cfg.Height != 96 {
		t.Errorf("output = %dx%d, want 192x96", cfg.Width, cfg.Height)
	}
}

func TestRunRejects(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := writePNG(t, 16, 16)
	out := filepath.Join(t.TempDir(), "out.png")

	if err := run(log, in, out, "", 12, 1, false, false); err == nil {
		t.Error("tile 12 accepted")
	}
	if err := run(log, in, out, "", 8, 0.5, false, false); err == nil {
		t.Error("scale 0.5 accepted")
	}
	if err := run(log, filepath.Join(t.TempDir(), "missing.png"), out, "", 8, 1, false, false); err == nil {
		t.Error("missing input accepted")
	}
}
