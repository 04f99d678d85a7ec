// Package render draws the canvas for a terminal. The scene is rasterized
// with gg at braille resolution, two by four dots per cell, and each cell
// becomes one braille rune colored with lipgloss.
package render

import (
	"hexflow/internal/canvas"
	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/hittest"
	"hexflow/internal/layout"
	"hexflow/internal/viewport"
)

// Terminal cell size in screen pixels, and dots per cell.
const (
	CellWidth  = 8
	CellHeight = 16
	DotsX      = 2
	DotsY      = 4
	DotScale   = float64(DotsX) / CellWidth
)

// CellCenter returns the screen point at the middle of a cell.
func CellCenter(col, row int) geom.Point {
	return geom.Pt(float64(col*CellWidth+CellWidth/2), float64(row*CellHeight+CellHeight/2))
}

// CellAt returns the cell containing a screen point.
func CellAt(p geom.Point) (col, row int) {
	return int(p.X) / CellWidth, int(p.Y) / CellHeight
}

type NodeView struct {
	ID       string
	Name     string
	Status   graph.Status
	Pos      geom.Point
	Selected bool
	Primary  bool
	Hovered  bool
}

type EdgeView struct {
	ID       string
	Path     geom.Path
	Selected bool
	Hovered  bool
}

// Scene is everything drawn in one frame, in world coordinates.
type Scene struct {
	View    viewport.Viewport
	Layout  layout.Layout
	Nodes   []NodeView
	Edges   []EdgeView
	Preview *geom.Path
	Box     *geom.Rect
	Hover   hittest.Hit
	Labels  bool
}

// NewScene captures the current state of a canvas.
func NewScene(c *canvas.Canvas) Scene {
	s := Scene{
		View:   c.Viewport(),
		Layout: c.Engine().Layout,
		Hover:  c.Hover(),
	}
	sel := c.Selection()
	pos := c.Positions()

	for _, n := range c.Nodes() {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		s.Nodes = append(s.Nodes, NodeView{
			ID:       n.ID,
			Name:     n.Name,
			Status:   n.Status,
			Pos:      p,
			Selected: sel.Has(n.ID),
			Primary:  sel.Primary() == n.ID,
			Hovered:  s.Hover.OnNode() && s.Hover.NodeID == n.ID,
		})
	}

	engine := c.Engine()
	for _, conn := range c.Connections() {
		path, ok := engine.EdgePath(conn, pos)
		if !ok {
			continue
		}
		s.Edges = append(s.Edges, EdgeView{
			ID:       conn.ID,
			Path:     path,
			Selected: sel.Connection() == conn.ID,
			Hovered:  s.Hover.Kind == hittest.Edge && s.Hover.ConnectionID == conn.ID,
		})
	}

	switch g := c.Gesture().(type) {
	case *canvas.DrawingConnection:
		p := geom.EdgePath(g.Source, g.Target, geom.KindCurve, engine.Curvature)
		p.Dashed = g.TargetID == ""
		s.Preview = &p
	case *canvas.BoxSelecting:
		r := g.Box().Normalize()
		s.Box = &r
	}
	return s
}

// Render draws the scene into cols by rows styled lines. Without raster
// labels, node names are written as text across the node's center cell.
func (s Scene) Render(cols, rows int) (Grid, error) {
	img, err := Frame(s, cols, rows)
	if err != nil {
		return nil, err
	}
	g := Braille(img)
	if !s.Labels {
		for _, n := range s.Nodes {
			col, row := CellAt(s.View.WorldToScreen(n.Pos))
			name := []rune(n.Name)
			g.Put(col-len(name)/2, row, string(name), hex(StatusColor(n.Status)))
		}
	}
	return g, nil
}
