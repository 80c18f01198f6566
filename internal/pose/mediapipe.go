package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
)

// MediaPipe pose landmark indices for the points the renderer uses.
var mediaPipeIndex = map[Name]int{
	Nose:          0,
	LeftShoulder:  11,
	RightShoulder: 12,
	LeftElbow:     13,
	RightElbow:    14,
	LeftWrist:     15,
	RightWrist:    16,
	LeftHip:       23,
	RightHip:      24,
}

type mediaPipePoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility"`
}

// ParseMediaPipe decodes a MediaPipe pose result: either a bare array of
// normalized landmarks or an object with a "landmarks" (or
// "poseLandmarks") array. Points with visibility below minVisibility are
// treated as absent; points without a visibility field are kept.
func ParseMediaPipe(r io.Reader, minVisibility float64) (Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pose: read landmarks: %w", err)
	}

	var points []mediaPipePoint
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, fmt.Errorf("pose: parse landmarks: %w", err)
		}
	} else {
		var doc struct {
			Landmarks     []mediaPipePoint `json:"landmarks"`
			PoseLandmarks []mediaPipePoint `json:"poseLandmarks"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("pose: parse landmarks: %w", err)
		}
		points = doc.Landmarks
		if len(points) == 0 {
			points = doc.PoseLandmarks
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty landmark list", ErrNoLandmarks)
	}

	set := make(Set)
	for name, idx := range mediaPipeIndex {
		if idx >= len(points) {
			continue
		}
		p := points[idx]
		conf := 1.0
		if p.Visibility != nil {
			conf = *p.Visibility
		}
		if conf < minVisibility {
			continue
		}
		set[name] = Landmark{X: p.X, Y: p.Y, Confidence: conf}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// FileProvider reads precomputed MediaPipe landmarks from a JSON file. It
// ignores the image it is given.
type FileProvider struct {
	Path          string
	MinVisibility float64
}

func (f FileProvider) Detect(ctx context.Context, _ image.Image) (Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("pose: open %s: %w", f.Path, err)
	}
	defer fh.Close()
	return ParseMediaPipe(fh, f.MinVisibility)
}
