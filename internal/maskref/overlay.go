package maskref

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/gpucore"
)

const overlayAlpha = 0.35

// RateColor returns the overlay tint of a rate. Full rate has no tint and
// reports ok == false.
func RateColor(r gpucore.ShadingRate) (c color.RGBA, ok bool) {
	switch r {
	case gpucore.ShadingRate1x1:
		return color.RGBA{}, false
	case gpucore.ShadingRate1x2, gpucore.ShadingRate2x1:
		return color.RGBA{R: 0, G: 102, B: 255, A: 255}, true
	case gpucore.ShadingRate2x2:
		return color.RGBA{G: 255, A: 255}, true
	case gpucore.ShadingRate2x4, gpucore.ShadingRate4x2:
		return color.RGBA{R: 255, G: 255, A: 255}, true
	}
	return color.RGBA{R: 255, A: 255}, true
}

// rateTint is RateColor in the [0, 1] range the program mixes in.
func rateTint(r gpucore.ShadingRate) [3]float32 {
	switch r {
	case gpucore.ShadingRate1x2, gpucore.ShadingRate2x1:
		return [3]float32{0, 0.4, 1}
	case gpucore.ShadingRate2x2:
		return [3]float32{0, 1, 0}
	case gpucore.ShadingRate2x4, gpucore.ShadingRate4x2:
		return [3]float32{1, 1, 0}
	}
	return [3]float32{1, 0, 0}
}

func quantize(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}

// Overlay tints dst, which holds the upscaled color, by the rate of the tile
// each pixel maps to and optionally draws the tile grid in white.
// The native resolution is the mask's tile grid scaled by nativeW x nativeH.
func Overlay(m *Mask, nativeW, nativeH uint32, dst *image.RGBA, grid bool) error {
	b := dst.Rect
	upW, upH := uint32(b.Dx()), uint32(b.Dy())
	if upW == 0 || upH == 0 || nativeW == 0 || nativeH == 0 {
		return fmt.Errorf("%w: overlay %dx%d over %dx%d", ErrDimensions, upW, upH, nativeW, nativeH)
	}
	if m.TileSize == 0 {
		return ErrTileSize
	}
	if cols, rows, _ := vrs.MaskGrid(nativeW, nativeH, m.TileSize); cols != m.Columns || rows != m.Rows {
		return fmt.Errorf("%w: mask %dx%d does not cover %dx%d", ErrDimensions, m.Columns, m.Rows, nativeW, nativeH)
	}

	ts := m.TileSize
	for y := uint32(0); y < upH; y++ {
		ny := y * nativeH / upH
		edgeY := ny%ts == 0 && (y*nativeH)%upH < nativeH
		for x := uint32(0); x < upW; x++ {
			nx := x * nativeW / upW
			rate := m.At(nx/ts, ny/ts)

			i := dst.PixOffset(b.Min.X+int(x), b.Min.Y+int(y))
			p := dst.Pix[i : i+4 : i+4]
			if rate != gpucore.ShadingRate1x1 {
				t := rateTint(rate)
				for c := 0; c < 3; c++ {
					v := float32(p[c]) / 255
					p[c] = quantize(v*(1-overlayAlpha) + t[c]*overlayAlpha)
				}
			}
			if grid {
				edgeX := nx%ts == 0 && (x*nativeW)%upW < nativeW
				if edgeX || edgeY {
					p[0], p[1], p[2] = 255, 255, 255
				}
			}
		}
	}
	return nil
}

// Upscale scales src to w x h with Catmull-Rom filtering.
func Upscale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	return dst
}

var legendEntries = []struct {
	label string
	rate  gpucore.ShadingRate
}{
	{"1x1", gpucore.ShadingRate1x1},
	{"1x2 2x1", gpucore.ShadingRate1x2},
	{"2x2", gpucore.ShadingRate2x2},
	{"2x4 4x2", gpucore.ShadingRate2x4},
	{"4x4", gpucore.ShadingRate4x4},
}

// Legend draws the rate colors with their names at the top-left corner of
// dst, offset by at. It returns the rectangle it covered.
func Legend(dst xdraw.Image, at image.Point) image.Rectangle {
	face := basicfont.Face7x13
	const (
		pad    = 4
		swatch = 10
		lineH  = 15
		textW  = 7 * 8
	)
	box := image.Rect(0, 0, pad*3+swatch+textW, pad*2+lineH*len(legendEntries)).Add(at)
	xdraw.Draw(dst, box, image.NewUniform(color.RGBA{A: 200}), image.Point{}, xdraw.Over)

	d := font.Drawer{Dst: dst, Src: image.White, Face: face}
	for i, e := range legendEntries {
		top := box.Min.Y + pad + i*lineH
		sw := image.Rect(box.Min.X+pad, top+2, box.Min.X+pad+swatch, top+2+swatch)
		if c, ok := RateColor(e.rate); ok {
			xdraw.Draw(dst, sw, image.NewUniform(c), image.Point{}, xdraw.Src)
		} else {
			xdraw.Draw(dst, sw, image.NewUniform(color.RGBA{R: 40, G: 40, B: 40, A: 255}), image.Point{}, xdraw.Src)
		}
		d.Dot = fixed.P(sw.Max.X+pad, top+face.Ascent)
		d.DrawString(e.label)
	}
	return box
}
