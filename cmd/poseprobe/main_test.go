package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"testing"

	"garment-warp-renderer/internal/pose"
)

func TestInspect(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 300))

	rep, err := inspect(context.Background(), pose.Estimator{}, img, inspectOptions{Smooth: true, Mirror: true})
	if err != nil {
		t.Fatalf("inspect() error = %v", err)
	}
	if rep.Width != 200 || rep.Height != 300 {
		t.Errorf("size = %dx%d, want 200x300", rep.Width, rep.Height)
	}
	if _, ok := rep.Landmarks[pose.LeftShoulder]; !ok {
		t.Error("landmarks missing left shoulder")
	}
	if rep.Geometry.ShoulderWidth <= 0 {
		t.Errorf("shoulder width = %v, want > 0", rep.Geometry.ShoulderWidth)
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, rep); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	for _, key := range []string{"width", "height", "landmarks", "geometry", "mesh"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}

func TestInspectProviderError(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 300))
	failing := pose.ProviderFunc(func(context.Context, image.Image) (pose.Set, error) {
		return nil, pose.ErrNoLandmarks
	})

	_, err := inspect(context.Background(), failing, img, inspectOptions{})
	if !errors.Is(err, pose.ErrNoLandmarks) {
		t.Errorf("inspect() error = %v, want ErrNoLandmarks", err)
	}
}
