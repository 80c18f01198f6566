package pose

import (
	"errors"
	"math"
	"testing"

	"garment-warp-renderer/internal/mathutil"
)

func TestGeometryIdentities(t *testing.T) {
	if got := Distance(mathutil.Vec2{0, 0}, mathutil.Vec2{3, 4}); got != 5 {
		t.Errorf("Distance((0,0),(3,4)) = %v, want 5", got)
	}
	if got := Midpoint(mathutil.Vec2{0, 0}, mathutil.Vec2{4, 4}); got != (mathutil.Vec2{2, 2}) {
		t.Errorf("Midpoint((0,0),(4,4)) = %v, want (2,2)", got)
	}
	if got := Angle(mathutil.Vec2{0, 0}, mathutil.Vec2{0, 1}); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Angle((0,0),(0,1)) = %v, want π/2", got)
	}
}

func TestProcess(t *testing.T) {
	pts := Points{
		LeftShoulder:  {400, 100},
		RightShoulder: {200, 100},
		LeftHip:       {380, 400},
		RightHip:      {220, 400},
	}
	g, err := Process(pts)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if g.ShoulderWidth != 200 {
		t.Errorf("ShoulderWidth = %v, want 200", g.ShoulderWidth)
	}
	if g.HipWidth != 160 {
		t.Errorf("HipWidth = %v, want 160", g.HipWidth)
	}
	if g.ShoulderMid != (mathutil.Vec2{300, 100}) {
		t.Errorf("ShoulderMid = %v, want (300,100)", g.ShoulderMid)
	}
	if g.HipMid != (mathutil.Vec2{300, 400}) {
		t.Errorf("HipMid = %v, want (300,400)", g.HipMid)
	}
	if g.TorsoHeight != 300 {
		t.Errorf("TorsoHeight = %v, want 300", g.TorsoHeight)
	}
	if math.Abs(math.Abs(g.ShoulderAngle)-math.Pi) > 1e-12 {
		t.Errorf("ShoulderAngle = %v, want ±π", g.ShoulderAngle)
	}
}

func TestProcessMissingHips(t *testing.T) {
	_, err := Process(Points{LeftShoulder: {1, 1}, RightShoulder: {2, 2}})
	if !errors.Is(err, ErrNoLandmarks) {
		t.Errorf("Process() error = %v, want ErrNoLandmarks", err)
	}
}
