package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestProjector_Project(t *testing.T) {
	p := NewProjector(DefaultCamera(), 640, 480)
	focal := 240 / math.Tan(math.Pi/6)

	tests := []struct {
		name   string
		pos    []float64
		rot    mgl64.Quat
		want   []Point
		radius bool
	}{
		{
			name: "origin lands at center",
			pos:  []float64{0, 0, 0},
			rot:  mgl64.QuatIdent(),
			want: []Point{{X: 320, Y: 240, Depth: 6}},
		},
		{
			name: "positive x goes right, positive y goes up",
			pos:  []float64{1, 1, 0},
			rot:  mgl64.QuatIdent(),
			want: []Point{{X: int(320 + focal/6), Y: int(240 - focal/6), Depth: 6}},
		},
		{
			name: "behind the camera is dropped",
			pos:  []float64{0, 0, 7},
			rot:  mgl64.QuatIdent(),
		},
		{
			name: "outside the frustum is dropped",
			pos:  []float64{100, 0, 0},
			rot:  mgl64.QuatIdent(),
		},
		{
			name: "orientation is applied",
			pos:  []float64{1, 0, 0},
			rot:  mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
			want: []Point{{X: 320, Y: 240, Depth: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Project(nil, tt.pos, tt.rot, 0.035)

			if len(got) != len(tt.want) {
				t.Fatalf("Project() returned %d points, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				g := got[i]
				if abs(g.X-w.X) > 1 || abs(g.Y-w.Y) > 1 || math.Abs(g.Depth-w.Depth) > 1e-9 {
					t.Errorf("point %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestProjector_RadiusShrinksWithDistance(t *testing.T) {
	p := NewProjector(DefaultCamera(), 640, 480)

	got := p.Project(nil, []float64{0, 0, 4, 0, 0, -20}, mgl64.QuatIdent(), 0.5)
	if len(got) != 2 {
		t.Fatalf("Project() returned %d points, want 2", len(got))
	}
	if got[0].Radius <= got[1].Radius {
		t.Errorf("near radius %d should exceed far radius %d", got[0].Radius, got[1].Radius)
	}
	if got[1].Radius < 1 {
		t.Errorf("radius = %d, want at least 1", got[1].Radius)
	}
}

func TestProjector_AppendsToDst(t *testing.T) {
	p := NewProjector(DefaultCamera(), 320, 240)
	dst := make([]Point, 1, 8)

	dst = p.Project(dst, []float64{0, 0, 0, 0.5, 0, 0}, mgl64.QuatIdent(), 0.035)
	if len(dst) != 3 {
		t.Errorf("len = %d, want 3", len(dst))
	}
	if w, h := p.Size(); w != 320 || h != 240 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
