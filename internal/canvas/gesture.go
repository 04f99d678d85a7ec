package canvas

import "hexflow/internal/geom"

// Gesture is the single active interaction. It is always one of Idle,
// *Panning, *DraggingNodes, *DrawingConnection or *BoxSelecting.
type Gesture interface {
	gesture()
}

type Idle struct{}

// Panning moves the view. StartPan and StartZoom restore the view on abort.
type Panning struct {
	StartPan  geom.Point
	StartZoom float64
	Last     geom.Point // screen
}

// DraggingNodes moves a cohort of nodes by the same world delta.
type DraggingNodes struct {
	IDs   []string
	Start map[string]geom.Point
	Last  geom.Point // screen
}

// DrawingConnection previews a connection from an output point. TargetID
// is empty while the preview follows the raw cursor.
type DrawingConnection struct {
	SourceID    string
	SourceIndex int
	Source      geom.Point // world
	Target      geom.Point // world
	TargetID    string
	TargetIndex int
}

// BoxSelecting tracks a selection rectangle in world space. Origin and
// Current are raw corners and only normalized on release.
type BoxSelecting struct {
	Origin  geom.Point
	Current geom.Point
	XOR     bool
}

func (Idle) gesture()               {}
func (*Panning) gesture()           {}
func (*DraggingNodes) gesture()     {}
func (*DrawingConnection) gesture() {}
func (*BoxSelecting) gesture()      {}

// Box returns the rectangle being dragged.
func (b *BoxSelecting) Box() geom.Rect {
	return geom.Rect{A: b.Origin, B: b.Current}
}

func gestureName(g Gesture) string {
	switch g.(type) {
	case *Panning:
		return "panning"
	case *DraggingNodes:
		return "dragging"
	case *DrawingConnection:
		return "connecting"
	case *BoxSelecting:
		return "selecting"
	}
	return "idle"
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Pointer is a pointer event in screen space.
type Pointer struct {
	Pos    geom.Point
	Button Button
	Shift  bool
}
