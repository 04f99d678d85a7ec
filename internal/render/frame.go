package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/hittest"
)

var (
	colorEdge     = color.RGBA{0xa1, 0xa1, 0xaa, 0xff}
	colorSelected = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
	colorHover    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorPreview  = color.RGBA{0xfa, 0xcc, 0x15, 0xff}
	colorBox      = color.RGBA{0x60, 0xa5, 0xfa, 0xff}
	colorPoint    = color.RGBA{0xd4, 0xd4, 0xd8, 0xff}
)

// StatusColor is the outline color of a node with the given status.
func StatusColor(s graph.Status) color.RGBA {
	switch s {
	case graph.StatusActive:
		return color.RGBA{0x22, 0xc5, 0x5e, 0xff}
	case graph.StatusInactive:
		return color.RGBA{0xef, 0x44, 0x44, 0xff}
	case graph.StatusWarning:
		return color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
	}
	return color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(gomono.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %v", fontErr)
	}
	return truetype.NewFace(fontTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Frame rasterizes the scene for a cols by rows terminal area. Unlit dots
// stay transparent.
func Frame(s Scene, cols, rows int) (*image.RGBA, error) {
	dc := gg.NewContext(cols*DotsX, rows*DotsY)
	dc.Scale(DotScale, DotScale)

	zoom := s.View.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	// Edges first so nodes sit on top.
	for _, e := range s.Edges {
		c := colorEdge
		width := 1.0
		switch {
		case e.Selected:
			c, width = colorSelected, 2
		case e.Hovered:
			c = colorHover
		}
		drawPath(dc, s, e.Path, c, width)
	}
	if s.Preview != nil {
		drawPath(dc, s, *s.Preview, colorPreview, 1)
	}

	size := s.Layout.Size
	for _, n := range s.Nodes {
		c := StatusColor(n.Status)
		width := 1.0
		if n.Hovered {
			c = colorHover
		}
		if n.Selected {
			c, width = colorSelected, 2
		}
		if n.Primary {
			width = 3
		}

		hex := geom.HexagonPoints(n.Pos, size)
		for i, p := range hex {
			sp := s.View.WorldToScreen(p)
			if i == 0 {
				dc.MoveTo(sp.X, sp.Y)
			} else {
				dc.LineTo(sp.X, sp.Y)
			}
		}
		dc.ClosePath()
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.Stroke()

		for _, pt := range s.Layout.Points(n.ID, n.Pos) {
			c := colorPoint
			r := 1.0 // dots
			if hoveredPoint(s.Hover, n.ID, pt.Index, pt.Input) {
				c, r = colorHover, 2
			}
			sp := s.View.WorldToScreen(pt.Position)
			dc.DrawCircle(sp.X, sp.Y, r/DotScale)
			dc.SetColor(c)
			dc.Fill()
		}
	}

	if s.Labels && len(s.Nodes) > 0 {
		face, err := labelFace(math.Max(6, 8*zoom))
		if err != nil {
			return nil, err
		}
		// Glyphs are sized in dots, so anchor in dot space.
		dc.Push()
		dc.Identity()
		dc.SetFontFace(face)
		for _, n := range s.Nodes {
			sp := s.View.WorldToScreen(n.Pos).Scale(DotScale)
			dc.SetColor(StatusColor(n.Status))
			dc.DrawStringAnchored(n.Name, sp.X, sp.Y, 0.5, 0.5)
		}
		dc.Pop()
	}

	if s.Box != nil {
		a := s.View.WorldToScreen(s.Box.A)
		b := s.View.WorldToScreen(s.Box.B)
		dc.DrawRectangle(a.X, a.Y, b.X-a.X, b.Y-a.Y)
		dc.SetColor(colorBox)
		dc.SetLineWidth(1)
		dc.SetDash(3, 2)
		dc.Stroke()
		dc.SetDash()
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected image type %T", dc.Image())
	}
	return img, nil
}

func hoveredPoint(h hittest.Hit, nodeID string, index int, input bool) bool {
	if h.NodeID != nodeID || h.Index != index {
		return false
	}
	if input {
		return h.Kind == hittest.Input
	}
	return h.Kind == hittest.Output
}

// drawPath strokes a world-space path. Affine maps preserve Bézier curves,
// so control points are transformed directly.
func drawPath(dc *gg.Context, s Scene, p geom.Path, c color.Color, width float64) {
	var last, prev geom.Point
	for _, seg := range p.Segments {
		pts := make([]geom.Point, len(seg.Pts))
		for i, pt := range seg.Pts {
			pts[i] = s.View.WorldToScreen(pt)
		}
		switch seg.Op {
		case geom.OpMove:
			dc.MoveTo(pts[0].X, pts[0].Y)
			prev = pts[0]
		case geom.OpLine:
			prev = last
			dc.LineTo(pts[0].X, pts[0].Y)
		case geom.OpQuad:
			prev = pts[0]
			dc.QuadraticTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
		case geom.OpCubic:
			prev = pts[1]
			dc.CubicTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		}
		last = pts[len(pts)-1]
	}

	dc.SetColor(c)
	dc.SetLineWidth(width)
	if p.Dashed {
		dash := make([]float64, len(geom.Dash))
		for i, d := range geom.Dash {
			dash[i] = math.Max(1, d*DotScale*s.View.Zoom)
		}
		dc.SetDash(dash...)
	}
	dc.Stroke()
	dc.SetDash()

	drawArrow(dc, prev, last, c)
}

// drawArrow fills a small head at to, pointing away from from.
func drawArrow(dc *gg.Context, from, to geom.Point, c color.Color) {
	d := to.Sub(from)
	length := d.Len()
	if length < 0.1 {
		return
	}
	dx, dy := d.X/length, d.Y/length

	arrowSize := 10.0
	arrowAngle := 0.5

	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-arrowSize*dx+arrowSize*dy*arrowAngle, to.Y-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(to.X-arrowSize*dx-arrowSize*dy*arrowAngle, to.Y-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.SetColor(c)
	dc.Fill()
}
