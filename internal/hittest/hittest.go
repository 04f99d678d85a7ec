// Package hittest resolves a world-space point to the single canvas element
// under it.
package hittest

import (
	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/layout"
)

// flattenSteps is the number of samples per curve used for edge distance.
const flattenSteps = 24

type Kind int

const (
	None Kind = iota
	Node
	Input
	Output
	Edge
)

func (k Kind) String() string {
	switch k {
	case Node:
		return "node"
	case Input:
		return "input"
	case Output:
		return "output"
	case Edge:
		return "edge"
	}
	return "none"
}

// Hit is the result of a hit test. NodeID is set for node and point hits,
// Index for point hits, ConnectionID for edge hits.
type Hit struct {
	Kind         Kind
	NodeID       string
	Index        int
	ConnectionID string
}

// OnNode reports whether the hit landed on a node body or one of its points.
func (h Hit) OnNode() bool {
	return h.Kind == Node || h.Kind == Input || h.Kind == Output
}

// NodeAt is a node with its current world position, in draw order.
type NodeAt struct {
	ID  string
	Pos geom.Point
}

type Engine struct {
	Layout         layout.Layout
	Curvature      float64
	PointThreshold float64
	EdgeThreshold  float64
}

func NewEngine(l layout.Layout) Engine {
	return Engine{
		Layout:         l,
		Curvature:      geom.DefaultCurvature,
		PointThreshold: geom.PointThreshold,
		EdgeThreshold:  geom.EdgeThreshold,
	}
}

// Test resolves p. Connection points of the hit node win over its body, and
// edges are only considered when no node is hit.
func (e Engine) Test(p geom.Point, nodes []NodeAt, conns []graph.Connection) Hit {
	if n, ok := e.NodeUnder(p, nodes, ""); ok {
		if idx, ok := e.pointUnder(p, n.Pos, true); ok {
			return Hit{Kind: Input, NodeID: n.ID, Index: idx}
		}
		if idx, ok := e.pointUnder(p, n.Pos, false); ok {
			return Hit{Kind: Output, NodeID: n.ID, Index: idx}
		}
		return Hit{Kind: Node, NodeID: n.ID}
	}

	pos := make(map[string]geom.Point, len(nodes))
	for _, n := range nodes {
		pos[n.ID] = n.Pos
	}
	for _, c := range conns {
		path, ok := e.EdgePath(c, pos)
		if !ok {
			continue
		}
		if geom.NearPolyline(p, path.Flatten(flattenSteps), e.EdgeThreshold) {
			return Hit{Kind: Edge, ConnectionID: c.ID}
		}
	}
	return Hit{}
}

// NodeUnder returns the top-most node whose body contains p, skipping exclude.
func (e Engine) NodeUnder(p geom.Point, nodes []NodeAt, exclude string) (NodeAt, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.ID == exclude {
			continue
		}
		if geom.InHexagon(p, n.Pos, e.Layout.Size) {
			return n, true
		}
	}
	return NodeAt{}, false
}

func (e Engine) pointUnder(p, center geom.Point, input bool) (int, bool) {
	for i := 0; i < e.Layout.Count; i++ {
		if geom.NearPoint(p, e.Layout.At(center, i, input), e.PointThreshold) {
			return i, true
		}
	}
	return 0, false
}

// EdgeEnds returns the world positions of a connection's output and input
// points. ok is false when either node has no position.
func (e Engine) EdgeEnds(c graph.Connection, pos map[string]geom.Point) (src, dst geom.Point, ok bool) {
	sp, ok1 := pos[c.SourceID]
	tp, ok2 := pos[c.TargetID]
	if !ok1 || !ok2 {
		return geom.Point{}, geom.Point{}, false
	}
	return e.Layout.At(sp, c.SourcePoint, false), e.Layout.At(tp, c.TargetPoint, true), true
}

// EdgePath returns the drawn path of a connection.
func (e Engine) EdgePath(c graph.Connection, pos map[string]geom.Point) (geom.Path, bool) {
	src, dst, ok := e.EdgeEnds(c, pos)
	if !ok {
		return geom.Path{}, false
	}
	return geom.EdgePath(src, dst, c.Type.PathKind(), e.Curvature), true
}
