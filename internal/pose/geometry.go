package pose

import (
	"fmt"
	"math"

	"garment-warp-renderer/internal/mathutil"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b mathutil.Vec2) float64 {
	return b.Sub(a).Len()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mathutil.Vec2) mathutil.Vec2 {
	return mathutil.Vec2{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// Angle returns the direction from a to b in radians (atan2, y-down).
func Angle(a, b mathutil.Vec2) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// Geometry holds the torso measurements derived from a landmark set.
// It is a pure function of the landmarks and never outlives a render.
type Geometry struct {
	ShoulderWidth float64       `json:"shoulder_width"`
	ShoulderMid   mathutil.Vec2 `json:"shoulder_mid"`
	HipWidth      float64       `json:"hip_width"`
	HipMid        mathutil.Vec2 `json:"hip_mid"`
	TorsoHeight   float64       `json:"torso_height"`
	ShoulderAngle float64       `json:"shoulder_angle"`
}

// Process derives Geometry from pixel-space landmarks. Shoulders and hips
// are required.
func Process(p Points) (Geometry, error) {
	ls, okLS := p[LeftShoulder]
	rs, okRS := p[RightShoulder]
	lh, okLH := p[LeftHip]
	rh, okRH := p[RightHip]
	if !okLS || !okRS || !okLH || !okRH {
		return Geometry{}, fmt.Errorf("%w: shoulders and hips required", ErrNoLandmarks)
	}

	g := Geometry{
		ShoulderWidth: Distance(ls, rs),
		ShoulderMid:   Midpoint(ls, rs),
		HipWidth:      Distance(lh, rh),
		HipMid:        Midpoint(lh, rh),
		ShoulderAngle: Angle(ls, rs),
	}
	g.TorsoHeight = Distance(g.ShoulderMid, g.HipMid)

	for _, v := range []float64{g.ShoulderWidth, g.HipWidth, g.TorsoHeight, g.ShoulderAngle} {
		if !mathutil.IsFinite(v) {
			return Geometry{}, fmt.Errorf("%w: non-finite geometry", ErrNoLandmarks)
		}
	}
	return g, nil
}
