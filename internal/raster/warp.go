package raster

import (
	"image"
	"math"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/mesh"
)

// DegenerateEpsilon is the smallest source or destination determinant
// magnitude a triangle may have and still be warped.
const DegenerateEpsilon = 1e-3

// edgeTolerance lets pixel centres lying on a shared edge belong to both
// triangles, so no seam pixels are left empty.
const edgeTolerance = 1e-6

// WarpTriangle maps the src triangle of tex onto the dst triangle of layer.
// Pixels whose centre falls inside dst are replaced (not blended) by the
// texel found through the inverse affine transform, so neighbouring
// triangles never double-blend along a shared edge. It reports false, and
// draws nothing, for degenerate triangles.
//
// This is the HOT PATH: no allocation inside the pixel loop.
func WarpTriangle(layer *Surface, tex *image.NRGBA, src, dst [3]mathutil.Vec2) bool {
	for i := 0; i < 3; i++ {
		if !src[i].IsFinite() || !dst[i].IsFinite() {
			return false
		}
	}

	// Forward transform is solved against the source determinant; the
	// destination determinant guards the inverse used for sampling.
	fwd, _, ok := mathutil.SolveTriangle(src, dst, DegenerateEpsilon)
	if !ok {
		return false
	}
	dstDet := mathutil.TriangleDet(dst[0], dst[1], dst[2])
	if dstDet > -DegenerateEpsilon && dstDet < DegenerateEpsilon {
		return false
	}
	inv, ok := fwd.Inverse()
	if !ok {
		return false
	}

	x0, y0 := dst[0][0], dst[0][1]
	x1, y1 := dst[1][0], dst[1][1]
	x2, y2 := dst[2][0], dst[2][1]

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX > layer.Width-1 {
		maxX = layer.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > layer.Height-1 {
		maxY = layer.Height - 1
	}
	if minX > maxX || minY > maxY {
		return true
	}

	// Barycentric setup
	invDet := 1.0 / ((y1-y2)*(x0-x2) + (x2-x1)*(y0-y2))
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5
		dsy := py - y2
		rowOff := sy * layer.Width * 4
		for sx := minX; sx <= maxX; sx++ {
			px := float64(sx) + 0.5
			dsx := px - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -edgeTolerance || w1 < -edgeTolerance || w2 < -edgeTolerance {
				continue
			}

			u := inv[0]*px + inv[1]*py + inv[2]
			v := inv[3]*px + inv[4]*py + inv[5]
			r, g, b, a := SampleBilinear(tex, u, v)

			i := rowOff + sx*4
			layer.Pix[i] = r
			layer.Pix[i+1] = g
			layer.Pix[i+2] = b
			layer.Pix[i+3] = a
		}
	}
	return true
}

// WarpMesh warps tex from the src mesh onto the dst mesh, one triangle of
// the fixed triangulation at a time, into a fresh transparent layer of
// size w×h. It returns the layer and the indices of triangles skipped as
// degenerate.
func WarpMesh(w, h int, tex *image.NRGBA, src, dst mesh.ControlMesh) (*Surface, []int) {
	layer := NewSurface(w, h)
	var skipped []int
	for i, tri := range mesh.Triangles() {
		if !WarpTriangle(layer, tex, src.Corners(tri), dst.Corners(tri)) {
			skipped = append(skipped, i)
		}
	}
	return layer, skipped
}
