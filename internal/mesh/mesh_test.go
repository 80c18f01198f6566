package mesh

import (
	"errors"
	"math"
	"testing"

	"garment-warp-renderer/internal/mathutil"
	"garment-warp-renderer/internal/pose"
)

func fallbackMesh(t *testing.T, w, h int, opt Options) (ControlMesh, pose.Points) {
	t.Helper()
	pts := pose.EstimatePixels(w, h)
	g, err := pose.Process(pts)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	m, err := Destination(pts, g, opt)
	if err != nil {
		t.Fatalf("Destination() error = %v", err)
	}
	return m, pts
}

func TestSource(t *testing.T) {
	m, err := Source(500, 700)
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	want := ControlMesh{
		{0, 0}, {250, 0}, {500, 0},
		{0, 350}, {250, 350}, {500, 350},
		{0, 700}, {250, 700}, {500, 700},
	}
	if m != want {
		t.Errorf("Source() = %v, want %v", m, want)
	}
}

func TestSourceRejectsEmptyTexture(t *testing.T) {
	tests := []struct {
		name   string
		sw, sh float64
	}{
		{"zero width", 0, 700},
		{"zero height", 500, 0},
		{"negative", -1, 10},
		{"nan", math.NaN(), 10},
		{"inf", math.Inf(1), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Source(tt.sw, tt.sh); !errors.Is(err, ErrEmptyTexture) {
				t.Errorf("Source(%v, %v) error = %v, want ErrEmptyTexture", tt.sw, tt.sh, err)
			}
		})
	}
}

func TestDestinationFallback(t *testing.T) {
	m, _ := fallbackMesh(t, 1000, 1400, Options{MirrorGarment: true})
	if !m.Finite() {
		t.Fatal("mesh has non-finite points")
	}

	// Shoulder width 350, torso height 490, hip width 300.
	want := ControlMesh{
		{325 - 70, 294}, {500, 294 - 73.5}, {675 + 70, 294},
		{(325+350)/2.0 + 35, 539}, {500, 539}, {(675+650)/2.0 - 35, 539},
		{350 + 30, 784}, {500, 784 + 60}, {650 - 30, 784},
	}
	for i := range want {
		if math.Abs(m[i][0]-want[i][0]) > 1e-6 || math.Abs(m[i][1]-want[i][1]) > 1e-6 {
			t.Errorf("point %d = %v, want %v", i, m[i], want[i])
		}
	}
}

func TestDestinationMirrorFlag(t *testing.T) {
	mirrored, _ := fallbackMesh(t, 600, 800, Options{MirrorGarment: true})
	direct, _ := fallbackMesh(t, 600, 800, Options{MirrorGarment: false})

	// Garment-left lands on image-left only with the mirror convention.
	if mirrored[0][0] >= mirrored[2][0] {
		t.Errorf("mirrored top row not left-to-right: %v, %v", mirrored[0], mirrored[2])
	}
	if direct[0][0] <= direct[2][0] {
		t.Errorf("direct top row not flipped: %v, %v", direct[0], direct[2])
	}
	if mirrored[0] != direct[2] || mirrored[8] != direct[6] {
		t.Error("flag should swap the outer columns")
	}
}

func TestDestinationMissingHips(t *testing.T) {
	pts := pose.Points{pose.LeftShoulder: {1, 1}, pose.RightShoulder: {5, 1}}
	_, err := Destination(pts, pose.Geometry{}, Options{MirrorGarment: true})
	if !errors.Is(err, pose.ErrNoLandmarks) {
		t.Errorf("Destination() error = %v, want ErrNoLandmarks", err)
	}
}

func TestDestinationAlwaysFinite(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 2000}, {640, 480}, {4000, 4000}}
	for _, s := range sizes {
		m, _ := fallbackMesh(t, s[0], s[1], Options{MirrorGarment: true})
		if !m.Finite() {
			t.Errorf("%dx%d: non-finite mesh %v", s[0], s[1], m)
		}
	}
}

func TestTriangulationFixed(t *testing.T) {
	want := [8]Triangle{
		{0, 1, 3}, {1, 4, 3}, {1, 2, 4}, {2, 5, 4},
		{3, 4, 6}, {4, 7, 6}, {4, 5, 7}, {5, 8, 7},
	}
	got := Triangles()
	if got != want {
		t.Fatalf("Triangles() = %v, want %v", got, want)
	}
	got[0] = Triangle{8, 8, 8}
	if Triangles() != want {
		t.Error("Triangles() exposes mutable state")
	}
}

func TestBoundsAndScale(t *testing.T) {
	m, _ := Source(10, 20)
	min, max := m.Scale(2).Bounds()
	if min != (mathutil.Vec2{0, 0}) || max != (mathutil.Vec2{20, 40}) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}
