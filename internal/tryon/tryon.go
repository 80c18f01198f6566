// Package tryon renders a flat garment texture onto a photo of a person.
//
// A render runs the stages in a fixed order: landmarks, optional
// smoothing, body geometry, control meshes, piecewise affine warp,
// luminance shading and detail effects. Only a failure to find the person
// aborts a render; later stages that cannot run are skipped with a
// warning and the rest of the picture is still produced.
package tryon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"time"

	"garment-warp-renderer/internal/logger"
	"garment-warp-renderer/internal/mesh"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/raster"
	"garment-warp-renderer/internal/shading"
	"garment-warp-renderer/internal/texture"
)

var (
	// ErrNoPersonDetected is returned when no landmark source can place
	// shoulders and hips, including when the person image is empty.
	ErrNoPersonDetected = errors.New("tryon: no person detected")

	// ErrInvalidGarment is returned for garment images with no area.
	ErrInvalidGarment = errors.New("tryon: invalid garment image")
)

// Result is a finished render. The caller owns every field.
type Result struct {
	Image     *image.NRGBA
	Landmarks pose.Points
	Geometry  pose.Geometry
	Mesh      mesh.ControlMesh
	Skipped   []int // triangles left out as degenerate
}

// Renderer runs the try-on pipeline. It holds no per-render state and is
// safe for concurrent use.
type Renderer struct {
	provider pose.Provider
	opts     Options
	log      *logger.Logger
}

// NewRenderer builds a renderer around a landmark provider. A nil provider
// means the deterministic estimator alone; any other provider is put in
// front of the estimator so detection failures fall back to it.
func NewRenderer(p pose.Provider, opts Options, log *logger.Logger) *Renderer {
	log = logger.OrNop(log)
	switch p.(type) {
	case nil:
		p = pose.Estimator{}
	case pose.Estimator, pose.Chain:
	default:
		p = pose.WithFallback(p, log)
	}
	return &Renderer{provider: p, opts: opts, log: log}
}

// Options returns the renderer's settings.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render composites garment onto person. The output has the person's size.
func (r *Renderer) Render(ctx context.Context, person, garment image.Image) (*Result, error) {
	start := time.Now()

	pb := person.Bounds()
	if pb.Dx() <= 0 || pb.Dy() <= 0 {
		return nil, fmt.Errorf("%w: person image is %dx%d", ErrNoPersonDetected, pb.Dx(), pb.Dy())
	}
	tex := texture.ToNRGBA(garment)
	src, err := mesh.Source(float64(tex.Rect.Dx()), float64(tex.Rect.Dy()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGarment, err)
	}

	pts, geo, err := r.landmarks(ctx, person)
	if err != nil {
		return nil, err
	}

	base := raster.FromImage(person)
	res := &Result{Image: base.Image(), Landmarks: pts, Geometry: geo}

	dst, err := mesh.Destination(pts, geo, mesh.Options{MirrorGarment: r.opts.MirrorGarment})
	if err != nil {
		r.log.Warn("garment skipped: no destination mesh", "error", err)
		return res, nil
	}
	res.Mesh = dst

	layer, skipped := r.warp(tex, src, dst, base.Width, base.Height)
	res.Skipped = skipped
	if len(skipped) > 0 {
		r.log.Warn("degenerate triangles skipped", "triangles", skipped)
	}
	if r.opts.Sleeves {
		layer = r.sleeves(layer, tex, pts, geo)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Luminance comes from the untouched person. Garment first, then the
	// shading masked to its footprint.
	shade := raster.MaskTo(raster.ShadingMap(base, r.opts.Shade), layer)
	composite := raster.Over(base, layer)
	composite = raster.Multiply(composite, shade)

	if r.opts.Details {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		effects := r.details(raster.NewSurface(base.Width, base.Height), pts, geo, dst)
		composite = raster.Multiply(composite, raster.MaskTo(effects, layer))
	}

	res.Image = composite.Image()
	r.log.Debug("render complete",
		"size", fmt.Sprintf("%dx%d", base.Width, base.Height),
		"skipped", len(skipped),
		"elapsed", time.Since(start))
	return res, nil
}

// landmarks detects, smooths and measures the person.
func (r *Renderer) landmarks(ctx context.Context, person image.Image) (pose.Points, pose.Geometry, error) {
	set, err := r.provider.Detect(ctx, person)
	if err == nil {
		err = set.Validate()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, pose.Geometry{}, ctxErr
		}
		return nil, pose.Geometry{}, fmt.Errorf("%w: %w", ErrNoPersonDetected, err)
	}

	b := person.Bounds()
	pts := set.Pixels(b.Dx(), b.Dy())
	if r.opts.Smooth {
		pts = pose.Smooth(pts)
	}
	geo, err := pose.Process(pts)
	if err != nil {
		return nil, pose.Geometry{}, fmt.Errorf("%w: %w", ErrNoPersonDetected, err)
	}
	return pts, geo, nil
}

// warp maps the garment onto the body mesh, optionally at a higher
// resolution that is filtered back down to w×h.
func (r *Renderer) warp(tex *image.NRGBA, src, dst mesh.ControlMesh, w, h int) (*raster.Surface, []int) {
	ss := r.opts.Supersample
	if ss <= 1 {
		return raster.WarpMesh(w, h, tex, src, dst)
	}
	big, skipped := raster.WarpMesh(w*ss, h*ss, tex, src, dst.Scale(float64(ss)))
	return raster.Downsample(big, w, h), skipped
}

// sleeves draws a tapered sleeve under each side of the torso whose elbow
// is known.
func (r *Renderer) sleeves(torso *raster.Surface, tex *image.NRGBA, pts pose.Points, geo pose.Geometry) *raster.Surface {
	leftShoulder, _, rightShoulder, _ := mesh.Options{MirrorGarment: r.opts.MirrorGarment}.Sides()
	under := raster.NewSurface(torso.Width, torso.Height)
	drawn := false

	for _, side := range []struct {
		shoulder pose.Name
		left     bool
	}{
		{leftShoulder, true},
		{rightShoulder, false},
	} {
		elbowName, _, _ := pose.Arm(side.shoulder)
		shoulder, ok1 := pts.Get(side.shoulder)
		elbow, ok2 := pts.Get(elbowName)
		if !ok1 || !ok2 {
			continue
		}

		strip := tex.SubImage(shading.SleeveStrip(tex.Rect, side.left, SleeveFraction))
		bend := shading.SleeveBow(pts, side.shoulder)
		sleeve, err := shading.TaperedSleeve(strip, geo.ShoulderWidth*SleeveFraction, pose.Distance(shoulder, elbow), r.opts.TaperRatio, bend)
		if err == nil {
			under, err = shading.AttachSleeve(under, sleeve, shoulder, elbow)
		}
		if err != nil {
			r.log.Warn("sleeve skipped", "shoulder", side.shoulder, "error", err)
			continue
		}
		drawn = true
	}

	if !drawn {
		return torso
	}
	return raster.Over(under, torso)
}

// details draws collar, hem and wrinkle shading into effects.
func (r *Renderer) details(effects *raster.Surface, pts pose.Points, geo pose.Geometry, dst mesh.ControlMesh) *raster.Surface {
	var err error
	if effects, err = shading.CollarShadow(effects, dst[1], geo.ShoulderWidth); err != nil {
		r.log.Warn("collar shadow skipped", "error", err)
	}
	if effects, err = shading.GarmentShadow(effects, shading.RegionFromBounds(dst.Bounds())); err != nil {
		r.log.Debug("garment shadow skipped", "error", err)
	}
	rng := rand.New(rand.NewSource(r.opts.Seed))
	if effects, err = shading.JointWrinkles(effects, pts, r.opts.Stiffness, rng); err != nil {
		r.log.Warn("wrinkles skipped", "error", err)
	}
	return effects
}
