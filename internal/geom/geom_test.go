package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHexagonPoints(t *testing.T) {
	t.Run("vertex 0 sits at 30 degrees", func(t *testing.T) {
		pts := HexagonPoints(Pt(0, 0), 10)
		want := Pt(10*math.Cos(math.Pi/6), 5)
		if pts[0].Dist(want) > epsilon {
			t.Errorf("expected vertex 0 at %v, got %v", want, pts[0])
		}
	})

	t.Run("all vertices lie on the circumradius", func(t *testing.T) {
		center := Pt(50, -20)
		for i, p := range HexagonPoints(center, 40) {
			if d := p.Dist(center); math.Abs(d-40) > epsilon {
				t.Errorf("vertex %d: expected distance 40, got %f", i, d)
			}
		}
	})

	t.Run("top and bottom are pointy", func(t *testing.T) {
		pts := HexagonPoints(Pt(0, 0), 10)
		if math.Abs(pts[1].X) > epsilon || math.Abs(pts[1].Y-10) > epsilon {
			t.Errorf("expected vertex 1 at (0,10), got %v", pts[1])
		}
		if math.Abs(pts[4].X) > epsilon || math.Abs(pts[4].Y+10) > epsilon {
			t.Errorf("expected vertex 4 at (0,-10), got %v", pts[4])
		}
	})
}

func TestInHexagon(t *testing.T) {
	center := Pt(100, 100)
	size := 40.0

	if !InHexagon(center, center, size) {
		t.Error("expected center to be inside")
	}

	far := []Point{
		Pt(center.X+2*size, center.Y),
		Pt(center.X-2*size, center.Y),
		Pt(center.X, center.Y+2*size),
		Pt(center.X, center.Y-2*size),
	}
	for _, p := range far {
		if InHexagon(p, center, size) {
			t.Errorf("expected %v to be outside", p)
		}
	}

	t.Run("margin is generous", func(t *testing.T) {
		p := Pt(center.X+size*1.05, center.Y)
		if !InHexagon(p, center, size) {
			t.Error("expected point inside the 1.1 margin to hit")
		}
	})
}

func TestNearPoint(t *testing.T) {
	if !NearPoint(Pt(0, 0), Pt(3, 4), PointThreshold) {
		t.Error("expected distance 5 to be near with threshold 8")
	}
	if NearPoint(Pt(0, 0), Pt(6, 8), 8) {
		t.Error("expected distance 10 not to be near with threshold 8")
	}
}

func TestDistanceToSegment(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		a, b Point
		want float64
	}{
		{"perpendicular foot inside", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{"clamped to start", Pt(-3, 4), Pt(0, 0), Pt(10, 0), 5},
		{"clamped to end", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"degenerate segment", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
		{"on the segment", Pt(2, 2), Pt(0, 0), Pt(4, 4), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceToSegment(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}

	if !NearSegment(Pt(5, 9), Pt(0, 0), Pt(10, 0), EdgeThreshold) {
		t.Error("expected point 9 away to be near with threshold 10")
	}
	if NearSegment(Pt(5, 11), Pt(0, 0), Pt(10, 0), EdgeThreshold) {
		t.Error("expected point 11 away not to be near")
	}
}

func TestRect(t *testing.T) {
	r := Rect{A: Pt(100, 100), B: Pt(0, 0)}
	n := r.Normalize()
	if n.A != Pt(0, 0) || n.B != Pt(100, 100) {
		t.Errorf("expected normalized (0,0)-(100,100), got %v", n)
	}
	if !r.Contains(Pt(100, 0)) {
		t.Error("expected corner to be contained")
	}
	if r.Contains(Pt(150, 50)) {
		t.Error("expected (150,50) to be outside")
	}
}
