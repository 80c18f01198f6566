package shading

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/raster"
)

// ErrInvalidGeometry reports non-finite or out-of-range effect input. The
// effect is skipped; nothing else is affected.
var ErrInvalidGeometry = errors.New("shading: invalid geometry")

const (
	collarAlpha    = 0.35
	collarMaxDepth = 40.0
	collarDepth    = 0.35 // × shoulder width, capped at collarMaxDepth
	collarOffset   = 4.0  // gradient starts this far below the neck point
	collarRadiusY  = 16.0
	collarSpread   = 2.2 // ellipse half-width = shoulder width / collarSpread

	hemAlpha = 0.15
	hemBand  = 0.2 // bottom fraction of the garment region
)

// Region is an axis-aligned rectangle in pixel space.
type Region struct {
	X, Y, W, H float64
}

// RegionFromBounds spans the rectangle between min and max.
func RegionFromBounds(min, max mathutil.Vec2) Region {
	return Region{X: min[0], Y: min[1], W: max[0] - min[0], H: max[1] - min[1]}
}

// Valid reports whether the region is finite and has area.
func (r Region) Valid() bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if !mathutil.IsFinite(v) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

// patch is a small gg canvas positioned at an integer origin of the layer,
// so effects only rasterise the part of their bounding box that lies on
// the layer.
type patch struct {
	dc     *gg.Context
	origin image.Point
}

// newPatch covers [min, max] plus a one pixel margin, clipped to layer. It
// fails with ErrInvalidGeometry when nothing of the box is on the layer.
func newPatch(layer *raster.Surface, minX, minY, maxX, maxY float64) (patch, error) {
	x0 := math.Max(math.Floor(minX)-1, 0)
	y0 := math.Max(math.Floor(minY)-1, 0)
	x1 := math.Min(math.Ceil(maxX)+1, float64(layer.Width))
	y1 := math.Min(math.Ceil(maxY)+1, float64(layer.Height))
	if !(x1 > x0) || !(y1 > y0) {
		return patch{}, fmt.Errorf("%w: box (%v,%v)-(%v,%v) is off the %dx%d layer",
			ErrInvalidGeometry, minX, minY, maxX, maxY, layer.Width, layer.Height)
	}
	return patch{
		dc:     gg.NewContext(int(x1-x0), int(y1-y0)),
		origin: image.Pt(int(x0), int(y0)),
	}, nil
}

// local converts layer coordinates to patch coordinates.
func (p patch) local(x, y float64) (float64, float64) {
	return x - float64(p.origin.X), y - float64(p.origin.Y)
}

func (p patch) flush(layer *raster.Surface) *raster.Surface {
	rgba, ok := p.dc.Image().(*image.RGBA)
	if !ok {
		return layer
	}
	return raster.OverAt(layer, rgba, p.origin)
}

func shadowColor(alpha float64) color.NRGBA {
	return color.NRGBA{A: uint8(math.Round(mathutil.Clamp(alpha, 0, 1) * 255))}
}

// CollarShadow darkens the garment just below the neckline with a radial
// gradient fading from 0.35 to 0 over min(shoulderWidth×0.35, 40) px.
func CollarShadow(layer *raster.Surface, neck mathutil.Vec2, shoulderWidth float64) (*raster.Surface, error) {
	if !neck.IsFinite() || !mathutil.IsFinite(shoulderWidth) || shoulderWidth <= 1 {
		return layer, fmt.Errorf("%w: collar shadow (neck %v, shoulder width %v)", ErrInvalidGeometry, neck, shoulderWidth)
	}

	depth := math.Min(shoulderWidth*collarDepth, collarMaxDepth)
	rx := shoulderWidth / collarSpread
	cy := neck[1] + depth

	p, err := newPatch(layer, neck[0]-rx, math.Min(neck[1], cy-collarRadiusY), neck[0]+rx, cy+collarRadiusY)
	if err != nil {
		return layer, fmt.Errorf("collar shadow: %w", err)
	}
	nx, ny := p.local(neck[0], neck[1])
	_, ecy := p.local(0, cy)
	w, h := float64(p.dc.Width()), float64(p.dc.Height())

	// Below the neckline only
	p.dc.DrawRectangle(0, ny, w, h-ny)
	p.dc.Clip()

	grad := gg.NewRadialGradient(nx, ny+collarOffset, 0, nx, ny+collarOffset, depth)
	grad.AddColorStop(0, shadowColor(collarAlpha))
	grad.AddColorStop(1, shadowColor(0))
	p.dc.SetFillStyle(grad)
	p.dc.DrawEllipse(nx, ecy, rx, collarRadiusY)
	p.dc.Fill()

	return p.flush(layer), nil
}

// GarmentShadow darkens the bottom 20% of region with a linear gradient
// from transparent to 0.15, giving the hem some depth.
func GarmentShadow(layer *raster.Surface, region Region) (*raster.Surface, error) {
	if !region.Valid() {
		return layer, fmt.Errorf("%w: garment shadow region %+v", ErrInvalidGeometry, region)
	}

	top := region.Y + region.H*(1-hemBand)
	bottom := region.Y + region.H
	p, err := newPatch(layer, region.X, top, region.X+region.W, bottom)
	if err != nil {
		return layer, fmt.Errorf("garment shadow: %w", err)
	}
	x0, y0 := p.local(region.X, top)
	_, y1 := p.local(0, bottom)

	grad := gg.NewLinearGradient(x0, y0, x0, y1)
	grad.AddColorStop(0, shadowColor(0))
	grad.AddColorStop(1, shadowColor(hemAlpha))
	p.dc.SetFillStyle(grad)
	// The gradient keeps the full band; the filled path stays on the canvas.
	w, h := float64(p.dc.Width()), float64(p.dc.Height())
	rx0, ry0 := math.Max(x0, 0), math.Max(y0, 0)
	rx1, ry1 := math.Min(x0+region.W, w), math.Min(y1, h)
	p.dc.DrawRectangle(rx0, ry0, rx1-rx0, ry1-ry0)
	p.dc.Fill()

	return p.flush(layer), nil
}
