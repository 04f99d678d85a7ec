package geom

import (
	"fmt"
	"strings"
)

// PathKind selects the shape EdgePath produces.
type PathKind int

const (
	KindCurve    PathKind = iota // cubic Bezier bowed off the source-target line
	KindBowed                    // quadratic Bezier bowed 1.5x further
	KindZigzag                   // axis aligned H, V, H
	KindStraight                 // straight dashed line
)

// DefaultCurvature is the fraction of edge length used to offset control points.
const DefaultCurvature = 0.2

// Dash is the dash pattern for straight reference edges.
var Dash = []float64{6, 4}

type Op int

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpCubic
)

// Segment is one path command. Pts holds the control points followed by
// the end point: one point for move/line, two for quad, three for cubic.
type Segment struct {
	Op  Op
	Pts []Point
}

type Path struct {
	Segments []Segment
	Dashed   bool
}

func (p *Path) moveTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Op: OpMove, Pts: []Point{pt}})
}

func (p *Path) lineTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Op: OpLine, Pts: []Point{pt}})
}

// EdgePath builds the rendered path of an edge from source to target.
func EdgePath(source, target Point, kind PathKind, curvature float64) Path {
	var path Path
	path.moveTo(source)

	d := target.Sub(source)
	length := d.Len()
	if length == 0 {
		path.lineTo(target)
		return path
	}
	normal := Point{-d.Y / length, d.X / length}

	switch kind {
	case KindBowed:
		mid := source.Add(d.Scale(0.5))
		ctrl := mid.Add(normal.Scale(1.5 * curvature * length))
		path.Segments = append(path.Segments, Segment{Op: OpQuad, Pts: []Point{ctrl, target}})
	case KindZigzag:
		midX := (source.X + target.X) / 2
		path.lineTo(Point{midX, source.Y})
		path.lineTo(Point{midX, target.Y})
		path.lineTo(target)
	case KindStraight:
		path.lineTo(target)
		path.Dashed = true
	default:
		offset := normal.Scale(curvature * length)
		c1 := source.Add(d.Scale(1.0 / 3)).Add(offset)
		c2 := source.Add(d.Scale(2.0 / 3)).Add(offset)
		path.Segments = append(path.Segments, Segment{Op: OpCubic, Pts: []Point{c1, c2, target}})
	}
	return path
}

// String renders the path in SVG path syntax.
func (p Path) String() string {
	var b strings.Builder
	var cur Point
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := seg.Pts[len(seg.Pts)-1]
		switch seg.Op {
		case OpMove:
			fmt.Fprintf(&b, "M %s", coord(end))
		case OpLine:
			switch {
			case end.Y == cur.Y && end.X != cur.X:
				fmt.Fprintf(&b, "H %s", num(end.X))
			case end.X == cur.X && end.Y != cur.Y:
				fmt.Fprintf(&b, "V %s", num(end.Y))
			default:
				fmt.Fprintf(&b, "L %s", coord(end))
			}
		case OpQuad:
			fmt.Fprintf(&b, "Q %s %s", coord(seg.Pts[0]), coord(end))
		case OpCubic:
			fmt.Fprintf(&b, "C %s %s %s", coord(seg.Pts[0]), coord(seg.Pts[1]), coord(end))
		}
		cur = end
	}
	return b.String()
}

// Flatten approximates the path with a polyline, sampling each curve
// segment steps times.
func (p Path) Flatten(steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	var pts []Point
	var cur Point
	for _, seg := range p.Segments {
		switch seg.Op {
		case OpMove, OpLine:
			cur = seg.Pts[0]
			pts = append(pts, cur)
		case OpQuad:
			c, end := seg.Pts[0], seg.Pts[1]
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				u := 1 - t
				pts = append(pts, Point{
					X: u*u*cur.X + 2*u*t*c.X + t*t*end.X,
					Y: u*u*cur.Y + 2*u*t*c.Y + t*t*end.Y,
				})
			}
			cur = end
		case OpCubic:
			c1, c2, end := seg.Pts[0], seg.Pts[1], seg.Pts[2]
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				u := 1 - t
				pts = append(pts, Point{
					X: u*u*u*cur.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*cur.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			cur = end
		}
	}
	return pts
}

func coord(p Point) string {
	return num(p.X) + " " + num(p.Y)
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
