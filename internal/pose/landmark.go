// Package pose produces body landmarks for a person image and derives the
// torso geometry the garment mesh is anchored to.
//
// Left and right are anatomical: LeftShoulder is the person's own left
// shoulder, which appears on the image's right side for a camera-facing
// subject.
package pose

import (
	"errors"
	"fmt"
	"math"

	"garment-warp-renderer/internal/mathutil"
)

// ErrNoLandmarks signals that a provider could not produce a usable
// landmark set (shoulders and hips are required).
var ErrNoLandmarks = errors.New("pose: no landmarks")

// Name identifies an anatomical landmark.
type Name int

const (
	Nose Name = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
)

var names = [...]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
}

func (n Name) String() string {
	if n < 0 || int(n) >= len(names) {
		return fmt.Sprintf("landmark(%d)", int(n))
	}
	return names[n]
}

// MarshalText makes Name usable as a JSON map key.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// Arm returns the elbow and wrist on the same side as shoulder. ok is
// false when shoulder is not a shoulder.
func Arm(shoulder Name) (elbow, wrist Name, ok bool) {
	switch shoulder {
	case LeftShoulder:
		return LeftElbow, LeftWrist, true
	case RightShoulder:
		return RightElbow, RightWrist, true
	}
	return 0, 0, false
}

// Required lists the landmarks every valid set must contain.
var Required = []Name{LeftShoulder, RightShoulder, LeftHip, RightHip}

// Landmark is a point in normalized image coordinates ([0,1] on both axes).
// Confidence is carried through from providers but not used by the renderer.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Set maps landmark names to normalized positions. Absent names are simply
// missing from the map.
type Set map[Name]Landmark

// MaxOffFrame bounds how far outside the unit square a normalized landmark
// may lie. Detectors place occluded joints somewhat off frame; anything
// beyond this is treated as garbage.
const MaxOffFrame = 10.0

// InRange reports whether lm is finite and within MaxOffFrame on both axes.
func (lm Landmark) InRange() bool {
	return mathutil.IsFinite(lm.X) && mathutil.IsFinite(lm.Y) &&
		math.Abs(lm.X) <= MaxOffFrame && math.Abs(lm.Y) <= MaxOffFrame
}

// Validate checks that every required landmark is present, finite and
// within MaxOffFrame of the image.
func (s Set) Validate() error {
	for _, n := range Required {
		lm, ok := s[n]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrNoLandmarks, n)
		}
		if !lm.InRange() {
			return fmt.Errorf("%w: %s out of range (%v, %v)", ErrNoLandmarks, n, lm.X, lm.Y)
		}
	}
	return nil
}

// Pixels converts the set to pixel coordinates for a w×h image. Optional
// landmarks that are not InRange are dropped.
func (s Set) Pixels(w, h int) Points {
	pts := make(Points, len(s))
	for n, lm := range s {
		if !lm.InRange() {
			continue
		}
		pts[n] = mathutil.Vec2{lm.X * float64(w), lm.Y * float64(h)}
	}
	return pts
}

// Points maps landmark names to pixel positions.
type Points map[Name]mathutil.Vec2

// Get returns the named point and whether it is present.
func (p Points) Get(n Name) (mathutil.Vec2, bool) {
	v, ok := p[n]
	return v, ok
}
