package hittest

import (
	"testing"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/layout"
)

func scene() ([]NodeAt, []graph.Connection) {
	nodes := []NodeAt{
		{ID: "a", Pos: geom.Pt(100, 100)},
		{ID: "b", Pos: geom.Pt(300, 100)},
	}
	conns := []graph.Connection{
		{ID: "ab", SourceID: "a", TargetID: "b", SourcePoint: 1, TargetPoint: 1, Type: graph.ConnReference},
	}
	return nodes, conns
}

func TestHitPriority(t *testing.T) {
	e := NewEngine(layout.Default())
	nodes, conns := scene()
	outA := e.Layout.At(geom.Pt(100, 100), 0, false)
	inB := e.Layout.At(geom.Pt(300, 100), 2, true)

	tests := []struct {
		name string
		p    geom.Point
		want Hit
	}{
		{"node body", geom.Pt(100, 100), Hit{Kind: Node, NodeID: "a"}},
		{"output point", outA, Hit{Kind: Output, NodeID: "a", Index: 0}},
		{"output point within threshold", outA.Add(geom.Pt(3, 3)), Hit{Kind: Output, NodeID: "a", Index: 0}},
		{"input point", inB, Hit{Kind: Input, NodeID: "b", Index: 2}},
		{"edge between nodes", geom.Pt(200, 104), Hit{Kind: Edge, ConnectionID: "ab"}},
		{"empty canvas", geom.Pt(200, 300), Hit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Test(tt.p, nodes, conns); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNodeBeatsEdge(t *testing.T) {
	e := NewEngine(layout.Default())
	nodes := []NodeAt{
		{ID: "a", Pos: geom.Pt(0, 0)},
		{ID: "b", Pos: geom.Pt(400, 0)},
		{ID: "c", Pos: geom.Pt(200, 0)},
	}
	conns := []graph.Connection{{ID: "ab", SourceID: "a", TargetID: "b", SourcePoint: 1, TargetPoint: 1, Type: graph.ConnReference}}

	got := e.Test(geom.Pt(200, 0), nodes, conns)
	if got.Kind != Node || got.NodeID != "c" {
		t.Errorf("expected node c over the edge, got %+v", got)
	}
}

func TestTopMostNodeWins(t *testing.T) {
	e := NewEngine(layout.Default())
	nodes := []NodeAt{
		{ID: "under", Pos: geom.Pt(0, 0)},
		{ID: "over", Pos: geom.Pt(10, 0)},
	}
	if got := e.Test(geom.Pt(5, 0), nodes, nil); got.NodeID != "over" {
		t.Errorf("expected top-most node, got %+v", got)
	}
	if n, ok := e.NodeUnder(geom.Pt(5, 0), nodes, "over"); !ok || n.ID != "under" {
		t.Errorf("expected excluded node to be skipped, got %+v", n)
	}
}

func TestEdgeDeclarationOrder(t *testing.T) {
	e := NewEngine(layout.Default())
	nodes, _ := scene()
	conns := []graph.Connection{
		{ID: "first", SourceID: "a", TargetID: "b", SourcePoint: 1, TargetPoint: 1, Type: graph.ConnReference},
		{ID: "second", SourceID: "a", TargetID: "b", SourcePoint: 1, TargetPoint: 1, Type: graph.ConnReference},
	}
	if got := e.Test(geom.Pt(200, 100), nodes, conns); got.ConnectionID != "first" {
		t.Errorf("expected first declared edge, got %+v", got)
	}
}

func TestEdgeWithMissingNodeIsSkipped(t *testing.T) {
	e := NewEngine(layout.Default())
	nodes := []NodeAt{{ID: "a", Pos: geom.Pt(0, 0)}}
	conns := []graph.Connection{{ID: "dangling", SourceID: "a", TargetID: "gone"}}
	if got := e.Test(geom.Pt(100, 0), nodes, conns); got.Kind != None {
		t.Errorf("expected no hit, got %+v", got)
	}
}
