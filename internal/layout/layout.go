// Package layout places connection points around a node's hexagon and
// positions nodes in the world.
package layout

import (
	"math"

	"hexflow/internal/geom"
)

const (
	// NodeSize is the circumradius of a node's hexagon in world units.
	NodeSize = 40.0
	// DefaultPointCount is the number of input (and output) slots per node.
	DefaultPointCount = 3
)

var cos30 = math.Cos(math.Pi / 6)

// Point is a connection point resolved to world space.
type Point struct {
	NodeID   string
	Index    int
	Input    bool
	Position geom.Point
}

// Layout describes the connection-point table shared by all nodes.
type Layout struct {
	Size  float64
	Count int
}

func Default() Layout {
	return Layout{Size: NodeSize, Count: DefaultPointCount}
}

// Valid reports whether index addresses a slot.
func (l Layout) Valid(index int) bool {
	return index >= 0 && index < l.Count
}

// Offset returns the slot position relative to the node center. Inputs sit
// on the left flat edge, outputs on the right; index 0 is the top slot.
func (l Layout) Offset(index int, input bool) geom.Point {
	x := l.Size * cos30
	if input {
		x = -x
	}
	half := l.Size / 2
	y := 0.0
	if l.Count > 1 {
		y = -half + float64(index)*(2*half)/float64(l.Count-1)
	}
	return geom.Pt(x, y)
}

// At returns the world position of a slot on a node centered at center.
func (l Layout) At(center geom.Point, index int, input bool) geom.Point {
	return center.Add(l.Offset(index, input))
}

// Points returns all inputs followed by all outputs of a node.
func (l Layout) Points(nodeID string, center geom.Point) []Point {
	pts := make([]Point, 0, 2*l.Count)
	for _, input := range []bool{true, false} {
		for i := 0; i < l.Count; i++ {
			pts = append(pts, Point{
				NodeID:   nodeID,
				Index:    i,
				Input:    input,
				Position: l.At(center, i, input),
			})
		}
	}
	return pts
}

// NearestInput returns the input slot closest to p. Ties go to the lower index.
func (l Layout) NearestInput(center, p geom.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < l.Count; i++ {
		if d := l.At(center, i, true).Dist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
