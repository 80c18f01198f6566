package shading

import (
	"fmt"
	"math"
	"math/rand"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/raster"
)

const (
	maxWrinkles      = 18
	wrinkleStroke    = 0.35 // stroke alpha before stress scaling
	wrinkleIntensity = 0.25 // layer alpha per unit of effective stress
	wrinkleMaxWidth  = 1.2
	wrinkleReachX    = 5.0 // strokes end within ±reachX horizontally
	wrinkleReachY    = 6.0 // and up to reachY below their start

	ElbowStress    = 0.6
	ShoulderStress = 0.4
)

// EffectiveStress scales stress down for stiff fabric.
func EffectiveStress(stress, stiffness float64) float64 {
	return stress * (1 - stiffness*0.5)
}

// WrinkleCount is the number of strokes drawn for a stress/stiffness pair:
// floor(18 · stress · (1 − stiffness·0.5)).
func WrinkleCount(stress, stiffness float64) int {
	return int(math.Floor(maxWrinkles * EffectiveStress(stress, stiffness)))
}

// StressWrinkles scatters short diagonal strokes over region to simulate
// fabric compressed by a joint. stress and stiffness must lie in [0,1].
// All randomness comes from rng, so a fixed seed reproduces the strokes.
func StressWrinkles(layer *raster.Surface, region Region, stress, stiffness float64, rng *rand.Rand) (*raster.Surface, error) {
	if !region.Valid() || !inUnit(stress) || !inUnit(stiffness) {
		return layer, fmt.Errorf("%w: wrinkles region %+v stress %v stiffness %v", ErrInvalidGeometry, region, stress, stiffness)
	}
	n := WrinkleCount(stress, stiffness)
	if n == 0 {
		return layer, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	p, err := newPatch(layer, region.X-wrinkleReachX-wrinkleMaxWidth, region.Y-wrinkleMaxWidth,
		region.X+region.W+wrinkleReachX+wrinkleMaxWidth, region.Y+region.H+wrinkleReachY+wrinkleMaxWidth)
	if err != nil {
		return layer, fmt.Errorf("wrinkles: %w", err)
	}
	p.dc.SetRGBA(0, 0, 0, wrinkleStroke*EffectiveStress(stress, stiffness)*wrinkleIntensity)
	p.dc.SetLineCapRound()

	for i := 0; i < n; i++ {
		x := region.X + rng.Float64()*region.W
		y := region.Y + rng.Float64()*region.H
		dx := rng.Float64()*2*wrinkleReachX - wrinkleReachX
		dy := rng.Float64() * wrinkleReachY
		width := rng.Float64() * wrinkleMaxWidth

		x0, y0 := p.local(x, y)
		p.dc.SetLineWidth(width)
		p.dc.DrawLine(x0, y0, x0+dx, y0+dy)
		p.dc.Stroke()
	}
	return p.flush(layer), nil
}

// ElbowRegion is the 40×30 box centred on an elbow.
func ElbowRegion(elbow mathutil.Vec2) Region {
	return Region{X: elbow[0] - 20, Y: elbow[1] - 15, W: 40, H: 30}
}

// ArmpitRegion is the 30×40 box hanging just below a shoulder.
func ArmpitRegion(shoulder mathutil.Vec2) Region {
	return Region{X: shoulder[0] - 15, Y: shoulder[1] + 10, W: 30, H: 40}
}

// JointWrinkles applies stress wrinkles at every elbow (stress 0.6) and
// shoulder-armpit junction (stress 0.4) present in p. Missing landmarks are
// skipped. It returns the first error met, after trying every joint.
func JointWrinkles(layer *raster.Surface, p pose.Points, stiffness float64, rng *rand.Rand) (*raster.Surface, error) {
	joints := []struct {
		name   pose.Name
		region func(mathutil.Vec2) Region
		stress float64
	}{
		{pose.LeftElbow, ElbowRegion, ElbowStress},
		{pose.RightElbow, ElbowRegion, ElbowStress},
		{pose.LeftShoulder, ArmpitRegion, ShoulderStress},
		{pose.RightShoulder, ArmpitRegion, ShoulderStress},
	}

	var firstErr error
	for _, j := range joints {
		pt, ok := p[j.name]
		if !ok {
			continue
		}
		var err error
		layer, err = StressWrinkles(layer, j.region(pt), j.stress, stiffness, rng)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return layer, firstErr
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
