// Package viewport maps between screen pixels and world coordinates under
// pan and zoom.
package viewport

import "hexflow/internal/geom"

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// Viewport converts with world = (screen - Origin)/Zoom - Pan. Pan is kept in
// world units and is unbounded.
type Viewport struct {
	Zoom   float64
	Pan    geom.Point
	Origin geom.Point
}

func New() Viewport {
	return Viewport{Zoom: 1}
}

// Clamp limits z to [MinZoom, MaxZoom].
func Clamp(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func (v Viewport) ScreenToWorld(s geom.Point) geom.Point {
	return s.Sub(v.Origin).Scale(1 / v.Zoom).Sub(v.Pan)
}

func (v Viewport) WorldToScreen(w geom.Point) geom.Point {
	return w.Add(v.Pan).Scale(v.Zoom).Add(v.Origin)
}

// ScreenDeltaToWorld converts a screen-space displacement to world units.
func (v Viewport) ScreenDeltaToWorld(d geom.Point) geom.Point {
	return d.Scale(1 / v.Zoom)
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(d geom.Point) {
	v.Pan = v.Pan.Add(v.ScreenDeltaToWorld(d))
}

// ZoomAt sets the zoom (clamped) while keeping the world point under the
// cursor fixed on screen.
func (v *Viewport) ZoomAt(cursor geom.Point, zoom float64) {
	anchor := v.ScreenToWorld(cursor)
	v.Zoom = Clamp(zoom)
	v.Pan = cursor.Sub(v.Origin).Scale(1 / v.Zoom).Sub(anchor)
}

// Wheel applies notches of ZoomStep about the cursor. Positive notches zoom in.
func (v *Viewport) Wheel(cursor geom.Point, notches int) {
	v.ZoomAt(cursor, v.Zoom+float64(notches)*ZoomStep)
}

func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Pan = geom.Point{}
}
