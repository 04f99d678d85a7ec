// Package geom holds the continuous-space geometry used by the canvas:
// hexagon vertices, hit-test predicates and edge path construction.
package geom

import "math"

const (
	// PointThreshold is the default hit radius for connection points, in world units.
	PointThreshold = 8.0
	// EdgeThreshold is the default hit distance for edges, in world units.
	EdgeThreshold = 10.0

	hexHitMargin = 1.1
)

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// HexagonPoints returns the six vertices of a pointy-top hexagon. Vertex 0
// sits at 30° so the flat edges face left and right.
func HexagonPoints(center Point, size float64) [6]Point {
	var pts [6]Point
	for i := 0; i < 6; i++ {
		angle := (30 + 60*float64(i)) * math.Pi / 180
		pts[i] = Point{
			X: center.X + size*math.Cos(angle),
			Y: center.Y + size*math.Sin(angle),
		}
	}
	return pts
}

// InHexagon approximates containment with a radius test scaled by 1.1.
// This is not exact polygon containment: the corners between vertices get
// a slightly generous margin.
func InHexagon(p, center Point, size float64) bool {
	return p.Dist(center) <= size*hexHitMargin
}

// NearPoint reports whether p lies within threshold of candidate.
func NearPoint(p, candidate Point, threshold float64) bool {
	return p.Dist(candidate) <= threshold
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(a.Add(ab.Scale(t)))
}

// NearSegment reports whether p lies within threshold of the segment a-b.
func NearSegment(p, a, b Point, threshold float64) bool {
	return DistanceToSegment(p, a, b) <= threshold
}

// NearPolyline reports whether p lies within threshold of any segment of pts.
func NearPolyline(p Point, pts []Point, threshold float64) bool {
	if len(pts) == 1 {
		return NearPoint(p, pts[0], threshold)
	}
	for i := 0; i+1 < len(pts); i++ {
		if NearSegment(p, pts[i], pts[i+1], threshold) {
			return true
		}
	}
	return false
}

// Rect is an axis-aligned rectangle given by two arbitrary corners.
type Rect struct {
	A, B Point
}

// Normalize returns the rectangle with A as the min corner and B as the max.
func (r Rect) Normalize() Rect {
	return Rect{
		A: Point{math.Min(r.A.X, r.B.X), math.Min(r.A.Y, r.B.Y)},
		B: Point{math.Max(r.A.X, r.B.X), math.Max(r.A.Y, r.B.Y)},
	}
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return p.X >= n.A.X && p.X <= n.B.X && p.Y >= n.A.Y && p.Y <= n.B.Y
}
