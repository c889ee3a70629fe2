// Package maskref is a CPU implementation of the shading-rate mask and
// debug overlay programs.
//
// It follows the embedded WGSL line for line and is used to check GPU
// output, to preview tuning on still images (cmd/vrsmask) and in tests.
package maskref

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/vrs"
	"github.com/gogpu/vrs/gpucore"
)

// motionScale is how strongly average motion raises the threshold.
const motionScale = 0.05

// Errors returned by Compute.
var (
	ErrDimensions = errors.New("maskref: input does not match the configured dimensions")
	ErrTileSize   = errors.New("maskref: tile size must be positive")
)

// Params are the mask program constants.
type Params struct {
	Width, Height               uint32
	TileSize                    uint32
	SensitivityThreshold        float32
	EnvironmentLuminance        float32
	QuarterRateModifier         float32
	WeberFechnerConstant        float32
	WeberFechnerMode            bool
	UseMotionVectors            bool
	AllowQuarterRate            bool
	UpscaleWidth, UpscaleHeight uint32
	UseUpscaleMotionVectors     bool
}

// ParamsFromConfig extracts the mask constants of cfg for a tile size.
func ParamsFromConfig(cfg *vrs.Config, tileSize uint32) Params {
	return Params{
		Width:                   cfg.BufferWidth,
		Height:                  cfg.BufferHeight,
		TileSize:                tileSize,
		SensitivityThreshold:    cfg.SensitivityThreshold,
		EnvironmentLuminance:    cfg.EnvironmentLuminance,
		QuarterRateModifier:     cfg.QuarterRateShadingModifier,
		WeberFechnerConstant:    cfg.WeberFechnerConstant,
		WeberFechnerMode:        cfg.WeberFechnerMode,
		UseMotionVectors:        cfg.UseMotionVectors,
		AllowQuarterRate:        cfg.AllowQuarterRateShading,
		UpscaleWidth:            cfg.UpscaleWidth,
		UpscaleHeight:           cfg.UpscaleHeight,
		UseUpscaleMotionVectors: cfg.UseUpscaleMotionVectors,
	}
}

// Vec2 is a screen-space motion vector in pixels.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Inputs are the buffers the mask program reads.
// Color is packed RGBA8 at native resolution, red in the low byte.
type Inputs struct {
	Color          []uint32
	Motion         []Vec2
	UpscaledMotion []Vec2
}

// Mask is a shading-rate image: one rate per tile in row-major order.
type Mask struct {
	Columns, Rows uint32
	TileSize      uint32
	Rates         []gpucore.ShadingRate
}

// At returns the rate of tile (tx, ty).
func (m *Mask) At(tx, ty uint32) gpucore.ShadingRate {
	return m.Rates[ty*m.Columns+tx]
}

// Words returns the mask as the 32-bit values the GPU program writes.
func (m *Mask) Words() []uint32 {
	out := make([]uint32, len(m.Rates))
	for i, r := range m.Rates {
		out[i] = uint32(r)
	}
	return out
}

// Histogram counts tiles per rate.
func (m *Mask) Histogram() map[gpucore.ShadingRate]int {
	h := make(map[gpucore.ShadingRate]int)
	for _, r := range m.Rates {
		h[r]++
	}
	return h
}

// PackRGBA converts img to packed RGBA8 words.
func PackRGBA(img image.Image) []uint32 {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Rect, img, b.Min, xdraw.Src)
	}
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	out := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			out[y*w+x] = uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
		}
	}
	return out
}

// kernel evaluates the mask program for one set of inputs.
type kernel struct {
	p  Params
	in Inputs
}

func (k *kernel) luminance(x, y uint32) float32 {
	p := k.in.Color[y*k.p.Width+x]
	r := float32(p&0xff) / 255
	g := float32((p>>8)&0xff) / 255
	b := float32((p>>16)&0xff) / 255
	return 0.299*r + 0.587*g + 0.114*b
}

func (k *kernel) contrast(a, b float32) float32 {
	d := a - b
	if d < 0 {
		d = -d
	}
	if k.p.WeberFechnerMode {
		mean := 0.5 * (a + b)
		return d / (k.p.WeberFechnerConstant*mean + k.p.EnvironmentLuminance)
	}
	return d
}

func (k *kernel) motionAt(x, y uint32) Vec2 {
	if k.p.UseUpscaleMotionVectors {
		ux := min(x*k.p.UpscaleWidth/k.p.Width, k.p.UpscaleWidth-1)
		uy := min(y*k.p.UpscaleHeight/k.p.Height, k.p.UpscaleHeight-1)
		return k.in.UpscaledMotion[uy*k.p.UpscaleWidth+ux]
	}
	return k.in.Motion[y*k.p.Width+x]
}

func (k *kernel) axisRate(c, threshold float32) gpucore.AxisShadingRate {
	if c >= threshold {
		return gpucore.AxisRate1X
	}
	if k.p.AllowQuarterRate && c*k.p.QuarterRateModifier < threshold {
		return gpucore.AxisRate4X
	}
	return gpucore.AxisRate2X
}

func (k *kernel) tile(tx, ty uint32) gpucore.ShadingRate {
	ts := k.p.TileSize
	x0, y0 := tx*ts, ty*ts
	x1, y1 := min(x0+ts, k.p.Width), min(y0+ts, k.p.Height)

	var maxX, maxY, motionSum float32
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			l := k.luminance(x, y)
			if x+1 < k.p.Width {
				maxX = max(maxX, k.contrast(l, k.luminance(x+1, y)))
			}
			if y+1 < k.p.Height {
				maxY = max(maxY, k.contrast(l, k.luminance(x, y+1)))
			}
			if k.p.UseMotionVectors {
				motionSum += k.motionAt(x, y).length()
			}
		}
	}

	threshold := k.p.SensitivityThreshold
	if k.p.UseMotionVectors {
		count := float32((x1 - x0) * (y1 - y0))
		threshold *= 1 + motionScale*motionSum/count
	}

	rx, ry := k.axisRate(maxX, threshold), k.axisRate(maxY, threshold)
	// 4x1 and 1x4 do not exist.
	if rx == gpucore.AxisRate4X && ry == gpucore.AxisRate1X {
		rx = gpucore.AxisRate2X
	}
	if ry == gpucore.AxisRate4X && rx == gpucore.AxisRate1X {
		ry = gpucore.AxisRate2X
	}
	return gpucore.MakeShadingRate(rx, ry)
}

// Compute classifies every tile of the frame.
func Compute(p Params, in Inputs) (*Mask, error) {
	m, k, err := prepare(p, in)
	if err != nil {
		return nil, err
	}
	for ty := uint32(0); ty < m.Rows; ty++ {
		k.row(m, ty)
	}
	return m, nil
}

func (k *kernel) row(m *Mask, ty uint32) {
	for tx := uint32(0); tx < m.Columns; tx++ {
		m.Rates[ty*m.Columns+tx] = k.tile(tx, ty)
	}
}

// prepare validates the inputs and allocates the mask.
func prepare(p Params, in Inputs) (*Mask, *kernel, error) {
	if p.TileSize == 0 {
		return nil, nil, ErrTileSize
	}
	n := int(p.Width) * int(p.Height)
	if p.Width == 0 || p.Height == 0 || len(in.Color) < n {
		return nil, nil, fmt.Errorf("%w: %d color words for %dx%d", ErrDimensions, len(in.Color), p.Width, p.Height)
	}
	if p.UseMotionVectors {
		if p.UseUpscaleMotionVectors {
			if p.UpscaleWidth == 0 || p.UpscaleHeight == 0 || len(in.UpscaledMotion) < int(p.UpscaleWidth)*int(p.UpscaleHeight) {
				return nil, nil, fmt.Errorf("%w: %d upscaled motion vectors for %dx%d",
					ErrDimensions, len(in.UpscaledMotion), p.UpscaleWidth, p.UpscaleHeight)
			}
		} else if len(in.Motion) < n {
			return nil, nil, fmt.Errorf("%w: %d motion vectors for %dx%d", ErrDimensions, len(in.Motion), p.Width, p.Height)
		}
	}

	m := &Mask{
		TileSize: p.TileSize,
	}
	m.Columns, m.Rows, _ = vrs.MaskGrid(p.Width, p.Height, p.TileSize)
	m.Rates = make([]gpucore.ShadingRate, int(m.Columns)*int(m.Rows))
	return m, &kernel{p: p, in: in}, nil
}
