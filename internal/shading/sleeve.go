package shading

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/raster"
)

const (
	SleeveSegments  = 24
	MaxSleeveOffset = 18.0 // px at t=0.5 for a fully bent arm
	DefaultTaper    = 0.65
)

// Band is one horizontal slice of a tapered sleeve, in sleeve-local pixels.
type Band struct {
	Y, H   float64
	Width  float64
	Offset float64
}

// SleeveBands slices a sleeve of the given base width and height into
// segments bands. Band i sits at t = i/segments; its width is
// baseWidth·(1 − t·(1 − taper)) and it is shifted sideways by
// sin(t·π)·bend·18.
func SleeveBands(baseWidth, height, taper, bend float64, segments int) []Band {
	if segments <= 0 {
		segments = SleeveSegments
	}
	bands := make([]Band, segments)
	sliceH := height / float64(segments)
	for i := range bands {
		t := float64(i) / float64(segments)
		bands[i] = Band{
			Y:      t * height,
			H:      sliceH,
			Width:  baseWidth * (1 - t*(1-taper)),
			Offset: math.Sin(t*math.Pi) * bend * MaxSleeveOffset,
		}
	}
	return bands
}

// TaperedSleeve redraws tex as a sleeve that narrows toward its far end and
// bows sideways by bend, in [-1,1]; positive bend bows toward +x. The
// result is height px tall and leaves 18 px on either side of the base
// width for the bow; the unbent sleeve axis is its middle column.
func TaperedSleeve(tex image.Image, baseWidth, height, taper, bend float64) (*raster.Surface, error) {
	sb := tex.Bounds()
	if sb.Empty() || !mathutil.IsFinite(baseWidth) || !mathutil.IsFinite(height) ||
		baseWidth < 1 || height < 1 || !(taper > 0 && taper <= 1) || !(bend >= -1 && bend <= 1) {
		return nil, fmt.Errorf("%w: sleeve %vx%v taper %v bend %v", ErrInvalidGeometry, baseWidth, height, taper, bend)
	}

	out := raster.NewSurface(int(math.Ceil(baseWidth+2*MaxSleeveOffset)), int(math.Ceil(height)))
	dst := out.Image()
	cx := float64(out.Width) / 2
	texH := float64(sb.Dy())

	for i, b := range SleeveBands(baseWidth, height, taper, bend, SleeveSegments) {
		sy0 := sb.Min.Y + int(math.Round(float64(i)*texH/SleeveSegments))
		sy1 := sb.Min.Y + int(math.Round(float64(i+1)*texH/SleeveSegments))
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		if sy1 > sb.Max.Y {
			sy0, sy1 = sb.Max.Y-1, sb.Max.Y
		}

		x0 := int(math.Round(cx - b.Width/2 + b.Offset))
		x1 := int(math.Round(cx + b.Width/2 + b.Offset))
		y0 := int(math.Round(b.Y))
		y1 := int(math.Round(b.Y + b.H))
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		draw.BiLinear.Scale(dst, image.Rect(x0, y0, x1, y1), tex, image.Rect(sb.Min.X, sy0, sb.Max.X, sy1), draw.Over, nil)
	}
	return out, nil
}

// BendFactor is the angle between the upper arm and the forearm, scaled so
// a straight arm is 0 and a fully folded one is 1.
func BendFactor(shoulder, elbow, wrist mathutil.Vec2) float64 {
	a1 := pose.Angle(shoulder, elbow)
	a2 := pose.Angle(elbow, wrist)
	d := math.Abs(a2 - a1)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	if !mathutil.IsFinite(d) {
		return 0
	}
	return math.Min(d/math.Pi, 1)
}

// BendSide is +1 when the forearm turns toward the sleeve's +x side as
// AttachSleeve lays it along shoulder→elbow, -1 when it turns the other
// way and 0 for a straight arm. It is the negated sign of the cross product
// of shoulder→elbow and elbow→wrist.
func BendSide(shoulder, elbow, wrist mathutil.Vec2) float64 {
	a := elbow.Sub(shoulder)
	b := wrist.Sub(elbow)
	switch cross := a[0]*b[1] - a[1]*b[0]; {
	case cross < 0:
		return 1
	case cross > 0:
		return -1
	}
	return 0
}

func armJoints(p pose.Points, shoulder pose.Name) (s, e, w mathutil.Vec2, ok bool) {
	elbowName, wristName, ok := pose.Arm(shoulder)
	if !ok {
		return s, e, w, false
	}
	s, ok1 := p.Get(shoulder)
	e, ok2 := p.Get(elbowName)
	w, ok3 := p.Get(wristName)
	return s, e, w, ok1 && ok2 && ok3
}

// SleeveBend returns the bend factor for the arm hanging from shoulder,
// or 0 if any of its joints is missing.
func SleeveBend(p pose.Points, shoulder pose.Name) float64 {
	s, e, w, ok := armJoints(p, shoulder)
	if !ok {
		return 0
	}
	return BendFactor(s, e, w)
}

// SleeveBow is SleeveBend signed by BendSide, ready for TaperedSleeve: the
// sleeve bows toward the side the forearm turns to.
func SleeveBow(p pose.Points, shoulder pose.Name) float64 {
	s, e, w, ok := armJoints(p, shoulder)
	if !ok {
		return 0
	}
	return BendSide(s, e, w) * BendFactor(s, e, w)
}

// AttachSleeve draws a sleeve surface onto layer so that the middle of its
// top edge lands on root and its length runs toward end. The sleeve keeps
// its own scale across the arm and is stretched along it to |end − root|.
// Sleeve +x maps to the unit axis d rotated to (d.y, −d.x).
func AttachSleeve(layer, sleeve *raster.Surface, root, end mathutil.Vec2) (*raster.Surface, error) {
	axis := end.Sub(root)
	length := axis.Len()
	if !root.IsFinite() || !end.IsFinite() || length < 1 || sleeve.Width == 0 || sleeve.Height == 0 {
		return layer, fmt.Errorf("%w: sleeve from %v to %v", ErrInvalidGeometry, root, end)
	}
	d := axis.Normalize()
	n := mathutil.Vec2{d[1], -d[0]}

	w, h := float64(sleeve.Width), float64(sleeve.Height)
	place := func(u, v float64) mathutil.Vec2 {
		return root.Add(n.Scale(u - w/2)).Add(d.Scale(v / h * length))
	}
	src := [4]mathutil.Vec2{{0, 0}, {w, 0}, {0, h}, {w, h}}
	dst := [4]mathutil.Vec2{place(0, 0), place(w, 0), place(0, h), place(w, h)}

	// WarpTriangle copies texels; go through a scratch layer and Over.
	tmp := raster.NewSurface(layer.Width, layer.Height)
	tex := sleeve.Image()
	ok1 := raster.WarpTriangle(tmp, tex, [3]mathutil.Vec2{src[0], src[1], src[2]}, [3]mathutil.Vec2{dst[0], dst[1], dst[2]})
	ok2 := raster.WarpTriangle(tmp, tex, [3]mathutil.Vec2{src[1], src[3], src[2]}, [3]mathutil.Vec2{dst[1], dst[3], dst[2]})
	if !ok1 && !ok2 {
		return layer, fmt.Errorf("%w: degenerate sleeve placement", ErrInvalidGeometry)
	}
	return raster.Over(layer, tmp), nil
}

// SleeveStrip is the outer column of the garment's upper half on one side,
// the part that overhangs the shoulder in the warped torso.
func SleeveStrip(garment image.Rectangle, left bool, fraction float64) image.Rectangle {
	sw := int(math.Round(float64(garment.Dx()) * fraction))
	if sw < 1 {
		sw = 1
	}
	top, bottom := garment.Min.Y, garment.Min.Y+garment.Dy()/2
	if bottom <= top {
		bottom = top + 1
	}
	if left {
		return image.Rect(garment.Min.X, top, garment.Min.X+sw, bottom)
	}
	return image.Rect(garment.Max.X-sw, top, garment.Max.X, bottom)
}
