package pose

import (
	"math"
	"testing"

	"garment-warp-renderer/internal/mathutil"
)

func closeTo(a, b mathutil.Vec2) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

func TestSmoothPoint(t *testing.T) {
	tests := []struct {
		name      string
		p         mathutil.Vec2
		neighbors []mathutil.Vec2
		weight    float64
		want      mathutil.Vec2
	}{
		{
			name: "no neighbors keeps point",
			p:    mathutil.Vec2{10, 20},
			want: mathutil.Vec2{10, 20},
		},
		{
			name:      "single neighbor",
			p:         mathutil.Vec2{0, 0},
			neighbors: []mathutil.Vec2{{13, 26}},
			weight:    0.3,
			want:      mathutil.Vec2{3, 6},
		},
		{
			name:      "two neighbors",
			p:         mathutil.Vec2{10, 10},
			neighbors: []mathutil.Vec2{{0, 10}, {20, 10}},
			weight:    0.4,
			want:      mathutil.Vec2{10, 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SmoothPoint(tt.p, tt.neighbors, tt.weight); !closeTo(got, tt.want) {
				t.Errorf("SmoothPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSmoothMissingNeighbors(t *testing.T) {
	in := Points{
		LeftShoulder: {100, 100},
		LeftElbow:    {100, 230},
		RightElbow:   {300, 200},
	}
	out := Smooth(in)

	// Shoulder against elbow at 0.3: (100 + 0.3*230) / 1.3 = 130
	if want := (mathutil.Vec2{100, 130}); !closeTo(out[LeftShoulder], want) {
		t.Errorf("left shoulder = %v, want %v", out[LeftShoulder], want)
	}
	// Elbow against shoulder only (wrist missing, not counted as zero)
	wantElbow := mathutil.Vec2{100, (230 + 0.4*100) / 1.4}
	if !closeTo(out[LeftElbow], wantElbow) {
		t.Errorf("left elbow = %v, want %v", out[LeftElbow], wantElbow)
	}
	// No neighbors at all leaves the point alone
	if out[RightElbow] != in[RightElbow] {
		t.Errorf("right elbow = %v, want unchanged %v", out[RightElbow], in[RightElbow])
	}
	if _, ok := out[RightShoulder]; ok {
		t.Error("smoothing invented a right shoulder")
	}
	if in[LeftShoulder] != (mathutil.Vec2{100, 100}) {
		t.Error("Smooth modified its input")
	}
}
