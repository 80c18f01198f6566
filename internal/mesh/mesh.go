// Package mesh builds the 3×3 control meshes that tie the flat garment
// texture to the body.
//
// Point order is row-major:
//
//	0 1 2   shoulders / collar
//	3 4 5   chest
//	6 7 8   hem
package mesh

import (
	"errors"
	"fmt"
	"math"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/pose"
)

// Size is the number of control points in a mesh.
const Size = 9

var (
	// ErrEmptyTexture is returned for a garment texture without area.
	ErrEmptyTexture = errors.New("mesh: garment texture has no area")
	// ErrNonFinite is returned when a destination point cannot be computed.
	ErrNonFinite = errors.New("mesh: non-finite control point")
)

// Proportions of the destination mesh, relative to body measurements.
const (
	sleeveOverhang = 0.2  // × shoulder width, outward from each shoulder
	neckRaise      = 0.15 // × torso height, above the shoulder midpoint
	chestInset     = 0.1  // × shoulder width, inward at chest row
	hemInset       = 0.1  // × hip width, inward at hem row
	hemCurve       = 0.2  // × hip width, downward at hem centre
)

// ControlMesh holds exactly nine points in row-major 3×3 order.
type ControlMesh [Size]mathutil.Vec2

// Triangle indexes three points of a ControlMesh.
type Triangle [3]int

// triangulation splits each of the four quads into two triangles. It is
// shared by the source and destination meshes and never changes.
var triangulation = [8]Triangle{
	{0, 1, 3}, {1, 4, 3},
	{1, 2, 4}, {2, 5, 4},
	{3, 4, 6}, {4, 7, 6},
	{4, 5, 7}, {5, 8, 7},
}

// Triangles returns a copy of the fixed triangulation.
func Triangles() [8]Triangle {
	return triangulation
}

// Corners returns the three mesh points of tri.
func (m ControlMesh) Corners(tri Triangle) [3]mathutil.Vec2 {
	return [3]mathutil.Vec2{m[tri[0]], m[tri[1]], m[tri[2]]}
}

// Finite reports whether every point is finite.
func (m ControlMesh) Finite() bool {
	for _, p := range m {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m ControlMesh) Bounds() (min, max mathutil.Vec2) {
	min = mathutil.Vec2{math.Inf(1), math.Inf(1)}
	max = mathutil.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, p := range m {
		min[0] = math.Min(min[0], p[0])
		min[1] = math.Min(min[1], p[1])
		max[0] = math.Max(max[0], p[0])
		max[1] = math.Max(max[1], p[1])
	}
	return min, max
}

// Scale returns the mesh with every coordinate multiplied by s.
func (m ControlMesh) Scale(s float64) ControlMesh {
	var out ControlMesh
	for i, p := range m {
		out[i] = p.Scale(s)
	}
	return out
}

// Source returns the evenly spaced grid spanning a sw×sh garment texture.
// Empty or non-finite sizes are rejected before any division happens.
func Source(sw, sh float64) (ControlMesh, error) {
	if !(sw > 0) || !(sh > 0) || !mathutil.IsFinite(sw) || !mathutil.IsFinite(sh) {
		return ControlMesh{}, fmt.Errorf("%w: %vx%v", ErrEmptyTexture, sw, sh)
	}
	var m ControlMesh
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[row*3+col] = mathutil.Vec2{sw * float64(col) / 2, sh * float64(row) / 2}
		}
	}
	return m, nil
}

// Options controls destination mesh construction.
type Options struct {
	// MirrorGarment maps the garment's visual left edge to the person's
	// anatomical right side, which is image-left for a camera-facing person.
	// Disable it for landmark sources that label sides from the viewer's
	// perspective.
	MirrorGarment bool
}

// Sides returns the shoulder and hip landmarks anchoring the garment's
// visual-left and visual-right columns.
func (o Options) Sides() (leftShoulder, leftHip, rightShoulder, rightHip pose.Name) {
	if o.MirrorGarment {
		return pose.RightShoulder, pose.RightHip, pose.LeftShoulder, pose.LeftHip
	}
	return pose.LeftShoulder, pose.LeftHip, pose.RightShoulder, pose.RightHip
}

// Destination builds the body-anchored mesh from pixel landmarks and their
// geometry. Shoulders and hips must be present.
func Destination(p pose.Points, g pose.Geometry, opt Options) (ControlMesh, error) {
	// l*/r* name the garment's visual-left and visual-right columns.
	lsName, lhName, rsName, rhName := opt.Sides()
	ls, ok1 := p[lsName]
	lh, ok2 := p[lhName]
	rs, ok3 := p[rsName]
	rh, ok4 := p[rhName]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return ControlMesh{}, fmt.Errorf("mesh: %w", pose.ErrNoLandmarks)
	}

	// Outward direction of each column: away from the body centre line.
	outL := outward(ls, g.ShoulderMid, -1)
	outR := outward(rs, g.ShoulderMid, 1)
	hipOutL := outward(lh, g.HipMid, outL)
	hipOutR := outward(rh, g.HipMid, outR)

	sw, hw := g.ShoulderWidth, g.HipWidth
	neck := mathutil.Vec2{g.ShoulderMid[0], g.ShoulderMid[1] - g.TorsoHeight*neckRaise}

	chestL := pose.Midpoint(ls, lh)
	chestL[0] -= outL * sw * chestInset
	chestR := pose.Midpoint(rs, rh)
	chestR[0] -= outR * sw * chestInset
	chestC := mathutil.Vec2{(neck[0] + g.HipMid[0]) / 2, (chestL[1] + chestR[1]) / 2}

	m := ControlMesh{
		{ls[0] + outL*sw*sleeveOverhang, ls[1]},
		neck,
		{rs[0] + outR*sw*sleeveOverhang, rs[1]},

		chestL,
		chestC,
		chestR,

		{lh[0] - hipOutL*hw*hemInset, lh[1]},
		{g.HipMid[0], g.HipMid[1] + hw*hemCurve},
		{rh[0] - hipOutR*hw*hemInset, rh[1]},
	}
	if !m.Finite() {
		return ControlMesh{}, ErrNonFinite
	}
	return m, nil
}

// outward returns -1 or +1 for points left or right of centre, and def
// when the point sits exactly on the centre line.
func outward(p, centre mathutil.Vec2, def float64) float64 {
	switch {
	case p[0] < centre[0]:
		return -1
	case p[0] > centre[0]:
		return 1
	default:
		return def
	}
}
