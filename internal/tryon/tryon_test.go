package tryon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"garment-warp-renderer/internal/mesh"
	"garment-warp-renderer/internal/output"
	"garment-warp-renderer/internal/pose"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	grey    = color.NRGBA{128, 128, 128, 255}
	garment = color.NRGBA{200, 40, 40, 255}
)

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol && d(a.A, b.A) <= tol
}

// armsUp is a frontal pose with both arms hanging slightly away from the body.
var armsUp = pose.ProviderFunc(func(ctx context.Context, img image.Image) (pose.Set, error) {
	return pose.Set{
		pose.Nose:          {X: 0.5, Y: 0.065},
		pose.RightShoulder: {X: 0.325, Y: 0.21},
		pose.LeftShoulder:  {X: 0.675, Y: 0.21},
		pose.RightElbow:    {X: 0.28, Y: 0.4},
		pose.LeftElbow:     {X: 0.72, Y: 0.4},
		pose.RightWrist:    {X: 0.3, Y: 0.55},
		pose.LeftWrist:     {X: 0.7, Y: 0.55},
		pose.RightHip:      {X: 0.35, Y: 0.56},
		pose.LeftHip:       {X: 0.65, Y: 0.56},
	}, nil
})

func TestRenderFallbackScenario(t *testing.T) {
	r := NewRenderer(nil, DefaultOptions(), nil)
	res, err := r.Render(context.Background(), solid(1000, 1400, grey), solid(500, 700, garment))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Image.Bounds() != image.Rect(0, 0, 1000, 1400) {
		t.Fatalf("bounds = %v", res.Image.Bounds())
	}

	// 128 grey shades to 148: 200·148/255 ≈ 116, 40·148/255 ≈ 23.
	shaded := color.NRGBA{116, 23, 23, 255}
	for _, p := range []image.Point{{500, 500}, {450, 400}, {560, 650}} {
		if got := res.Image.NRGBAAt(p.X, p.Y); !near(got, shaded, 1) {
			t.Errorf("garment pixel %v = %v, want ≈%v", p, got, shaded)
		}
	}
	for _, p := range []image.Point{{10, 10}, {500, 1300}, {990, 500}} {
		if got := res.Image.NRGBAAt(p.X, p.Y); got != grey {
			t.Errorf("outside pixel %v = %v, want unchanged", p, got)
		}
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped triangles %v", res.Skipped)
	}
	if !res.Mesh.Finite() {
		t.Error("mesh not finite")
	}
}

func TestRenderSupersample(t *testing.T) {
	opts := DefaultOptions()
	opts.Supersample = 2
	res, err := NewRenderer(nil, opts, nil).Render(context.Background(), solid(200, 280, grey), solid(100, 140, garment))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Image.NRGBAAt(100, 100); !near(got, color.NRGBA{116, 23, 23, 255}, 2) {
		t.Errorf("pixel = %v", got)
	}
}

func TestRenderRejectsEmptyGarment(t *testing.T) {
	r := NewRenderer(nil, DefaultOptions(), nil)
	for _, size := range []image.Point{{0, 700}, {500, 0}} {
		_, err := r.Render(context.Background(), solid(100, 140, grey), solid(size.X, size.Y, garment))
		if !errors.Is(err, ErrInvalidGarment) || !errors.Is(err, mesh.ErrEmptyTexture) {
			t.Errorf("garment %v: err = %v, want ErrInvalidGarment", size, err)
		}
	}
}

func TestRenderNoPerson(t *testing.T) {
	r := NewRenderer(nil, DefaultOptions(), nil)
	if _, err := r.Render(context.Background(), solid(0, 0, grey), solid(10, 10, garment)); !errors.Is(err, ErrNoPersonDetected) {
		t.Errorf("empty person: err = %v", err)
	}

	failing := pose.ProviderFunc(func(context.Context, image.Image) (pose.Set, error) {
		return nil, errors.New("detector offline")
	})
	onlyFailing := NewRenderer(pose.Chain{Providers: []pose.Provider{failing}}, DefaultOptions(), nil)
	_, err := onlyFailing.Render(context.Background(), solid(100, 140, grey), solid(10, 10, garment))
	if !errors.Is(err, ErrNoPersonDetected) || !errors.Is(err, pose.ErrNoLandmarks) {
		t.Errorf("failing chain: err = %v", err)
	}
}

func TestRenderProviderFallback(t *testing.T) {
	failing := pose.ProviderFunc(func(context.Context, image.Image) (pose.Set, error) {
		return nil, errors.New("detector offline")
	})
	res, err := NewRenderer(failing, DefaultOptions(), nil).Render(context.Background(), solid(1000, 1400, grey), solid(500, 700, garment))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := pose.EstimatePixels(1000, 1400)
	if got := res.Landmarks[pose.LeftHip]; got.Sub(want[pose.LeftHip]).Len() > 1e-9 {
		t.Errorf("left hip = %v, want fallback %v", got, want[pose.LeftHip])
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(nil, DefaultOptions(), nil).Render(ctx, solid(100, 140, grey), solid(10, 10, garment))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(armsUp, DefaultOptions(), nil)
	person, cloth := solid(400, 560, grey), solid(120, 160, garment)
	a, err := r.Render(context.Background(), person, cloth)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(context.Background(), person, cloth)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("identical inputs rendered differently")
	}
	if person.NRGBAAt(200, 200) != grey {
		t.Error("person image modified")
	}
}

func TestRenderSleeves(t *testing.T) {
	opts := DefaultOptions()
	opts.Smooth = false
	person := solid(400, 560, grey)
	cloth := solid(120, 160, garment)

	with, err := NewRenderer(armsUp, opts, nil).Render(context.Background(), person, cloth)
	if err != nil {
		t.Fatal(err)
	}
	opts.Sleeves = false
	without, err := NewRenderer(armsUp, opts, nil).Render(context.Background(), person, cloth)
	if err != nil {
		t.Fatal(err)
	}

	// Halfway down the upper arm, outside the torso outline.
	if got := with.Image.NRGBAAt(121, 171); int(got.R) < int(got.G)+50 {
		t.Errorf("sleeve pixel = %v, want garment colour", got)
	}
	if got := without.Image.NRGBAAt(121, 171); got != grey {
		t.Errorf("pixel without sleeves = %v, want person", got)
	}
}

func TestRenderBytes(t *testing.T) {
	encode := func(img image.Image) []byte {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}
	r := NewRenderer(nil, DefaultOptions(), nil)
	data, res, err := r.RenderBytes(context.Background(), encode(solid(100, 140, grey)), encode(solid(50, 70, garment)), output.PNG)
	if err != nil {
		t.Fatalf("RenderBytes: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if img.Bounds() != res.Image.Bounds() {
		t.Errorf("encoded bounds %v, result %v", img.Bounds(), res.Image.Bounds())
	}

	if _, _, err := r.RenderBytes(context.Background(), []byte("nope"), encode(solid(5, 5, garment)), output.PNG); !errors.Is(err, ErrNoPersonDetected) {
		t.Errorf("bad person payload: err = %v", err)
	}
	if _, _, err := r.RenderBytes(context.Background(), encode(solid(5, 5, grey)), []byte("nope"), output.PNG); !errors.Is(err, ErrInvalidGarment) {
		t.Errorf("bad garment payload: err = %v", err)
	}
}

func TestRenderOffFrameLandmarks(t *testing.T) {
	// A detector that puts the hips absurdly far below the frame is
	// replaced by the estimator; a wild elbow is simply dropped.
	wild := pose.ProviderFunc(func(ctx context.Context, img image.Image) (pose.Set, error) {
		set, err := armsUp.Detect(ctx, img)
		if err != nil {
			return nil, err
		}
		set[pose.LeftHip] = pose.Landmark{X: 0.65, Y: 20000}
		return set, nil
	})
	res, err := NewRenderer(wild, DefaultOptions(), nil).Render(context.Background(), solid(200, 280, grey), solid(50, 70, garment))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := pose.EstimatePixels(200, 280)
	if got := res.Landmarks[pose.LeftHip]; got.Sub(want[pose.LeftHip]).Len() > 1e-9 {
		t.Errorf("left hip = %v, want fallback %v", got, want[pose.LeftHip])
	}

	wildElbow := pose.ProviderFunc(func(ctx context.Context, img image.Image) (pose.Set, error) {
		set, err := armsUp.Detect(ctx, img)
		if err != nil {
			return nil, err
		}
		set[pose.RightElbow] = pose.Landmark{X: 0.3, Y: 5000}
		return set, nil
	})
	res, err = NewRenderer(wildElbow, DefaultOptions(), nil).Render(context.Background(), solid(200, 280, grey), solid(50, 70, garment))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, ok := res.Landmarks[pose.RightElbow]; ok {
		t.Error("off-frame elbow reached the pipeline")
	}
	if _, ok := res.Landmarks[pose.LeftElbow]; !ok {
		t.Error("in-frame elbow dropped")
	}
}
