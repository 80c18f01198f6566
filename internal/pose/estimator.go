package pose

import (
	"context"
	"fmt"
	"image"
)

// Body proportions of the fallback estimator, as fractions of image size.
const (
	headHeight        = 0.13
	neckToShoulder    = 0.08
	shoulderToHip     = 0.35
	shoulderHalfWidth = 0.175
	hipHalfWidth      = 0.15
	noseHeight        = headHeight / 2
)

// Estimator is the deterministic fallback provider. It places landmarks from
// standard frontal body proportions using only the image size, and labels
// them for a camera-facing person (the right shoulder sits on image-left).
type Estimator struct{}

func (Estimator) Detect(ctx context.Context, img image.Image) (Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid image size %dx%d", ErrNoLandmarks, w, h)
	}

	pts := EstimatePixels(w, h)
	set := make(Set, len(pts))
	for n, p := range pts {
		set[n] = Landmark{X: p[0] / float64(w), Y: p[1] / float64(h), Confidence: 1}
	}
	return set, nil
}

// EstimatePixels returns the fallback landmarks in pixel coordinates:
// shoulders at y = 0.21H, ±0.175W about the centre; hips at y = 0.56H,
// ±0.15W about the centre.
func EstimatePixels(w, h int) Points {
	fw, fh := float64(w), float64(h)
	cx := fw / 2
	shoulderY := fh*headHeight + fh*neckToShoulder
	hipY := shoulderY + fh*shoulderToHip

	return Points{
		Nose:          {cx, fh * noseHeight},
		RightShoulder: {cx - fw*shoulderHalfWidth, shoulderY},
		LeftShoulder:  {cx + fw*shoulderHalfWidth, shoulderY},
		RightHip:      {cx - fw*hipHalfWidth, hipY},
		LeftHip:       {cx + fw*hipHalfWidth, hipY},
	}
}
