package tryon

import (
	"garment-warp-renderer/internal/raster"
	"garment-warp-renderer/internal/shading"
)

// SleeveFraction is the share of the garment width, on each side, cut out
// as sleeve fabric. It matches the sleeve overhang of the destination mesh.
const SleeveFraction = 0.2

// Options tunes a render. The zero value disables every optional stage;
// start from DefaultOptions.
type Options struct {
	Smooth        bool    // damp landmark jitter before building the mesh
	MirrorGarment bool    // garment visual-left goes to the anatomical right side
	Sleeves       bool    // draw tapered sleeves when elbows are known
	Details       bool    // collar, hem and wrinkle shading
	Stiffness     float64 // fabric stiffness in [0,1]; stiffer fabric wrinkles less
	TaperRatio    float64 // sleeve width at the elbow relative to the shoulder
	Seed          int64   // wrinkle placement seed
	Supersample   int     // warp at N× resolution and filter down; <= 1 disables
	Shade         raster.ShadeConfig
}

// DefaultOptions returns the settings used by the command line tools.
func DefaultOptions() Options {
	return Options{
		Smooth:        true,
		MirrorGarment: true,
		Sleeves:       true,
		Details:       true,
		Stiffness:     0.5,
		TaperRatio:    shading.DefaultTaper,
		Seed:          1,
		Supersample:   1,
		Shade:         raster.DefaultShadeConfig(),
	}
}
