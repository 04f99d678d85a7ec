package canvas

import (
	"context"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/hittest"
)

// PointerDown starts a gesture. Only the primary button is handled.
//
// With space held the view pans whatever is under the pointer. On a node
// body (or input point) a click selects and starts a drag; with shift it
// only toggles membership and no drag starts. An output point starts a
// connection. An edge selects the connection. Empty canvas starts a box
// selection, clearing the selection first unless shift is held.
func (c *Canvas) PointerDown(p Pointer) {
	if p.Button != ButtonPrimary {
		return
	}
	if _, ok := c.gesture.(Idle); !ok {
		return
	}

	if c.space {
		c.gesture = &Panning{StartPan: c.view.Pan, StartZoom: c.view.Zoom, Last: p.Pos}
		return
	}

	world := c.view.ScreenToWorld(p.Pos)
	hit := c.engine.Test(world, c.nodesAt(), c.conns)
	c.hover = hit

	switch hit.Kind {
	case hittest.Output:
		center := c.pos[hit.NodeID]
		src := c.opts.Layout.At(center, hit.Index, false)
		c.gesture = &DrawingConnection{
			SourceID:    hit.NodeID,
			SourceIndex: hit.Index,
			Source:      src,
			Target:      world,
		}
	case hittest.Node, hittest.Input:
		if p.Shift {
			c.sel.Toggle(hit.NodeID)
			return
		}
		cohort := []string{hit.NodeID}
		if c.sel.Has(hit.NodeID) && c.sel.Len() > 1 {
			cohort = c.sel.IDs()
		} else {
			c.sel.Select(hit.NodeID)
		}
		start := make(map[string]geom.Point, len(cohort))
		for _, id := range cohort {
			start[id] = c.pos[id]
		}
		c.gesture = &DraggingNodes{IDs: cohort, Start: start, Last: p.Pos}
	case hittest.Edge:
		c.sel.SelectConnection(hit.ConnectionID, p.Shift)
	default:
		if !p.Shift {
			c.sel.Clear()
		}
		c.gesture = &BoxSelecting{Origin: world, Current: world, XOR: p.Shift}
	}
}

// PointerMove advances the active gesture, or updates the hover hit when idle.
func (c *Canvas) PointerMove(p Pointer) {
	switch g := c.gesture.(type) {
	case *Panning:
		c.view.PanBy(p.Pos.Sub(g.Last))
		g.Last = p.Pos
	case *DraggingNodes:
		d := c.view.ScreenDeltaToWorld(p.Pos.Sub(g.Last))
		for _, id := range g.IDs {
			c.pos[id] = c.pos[id].Add(d)
		}
		g.Last = p.Pos
	case *DrawingConnection:
		world := c.view.ScreenToWorld(p.Pos)
		g.Target = world
		g.TargetID = ""
		if n, ok := c.engine.NodeUnder(world, c.nodesAt(), g.SourceID); ok {
			g.TargetID = n.ID
			g.TargetIndex = c.opts.Layout.NearestInput(n.Pos, world)
			g.Target = c.opts.Layout.At(n.Pos, g.TargetIndex, true)
		}
	case *BoxSelecting:
		g.Current = c.view.ScreenToWorld(p.Pos)
	default:
		c.hover = c.HitTest(p.Pos)
	}
}

// PointerUp finishes the active gesture and returns to idle. A drawn
// connection is committed through the authoring protocol; its error, if
// any, is returned.
func (c *Canvas) PointerUp(ctx context.Context, p Pointer) error {
	if p.Button != ButtonPrimary {
		return nil
	}
	if _, ok := c.gesture.(Idle); !ok {
		c.PointerMove(p)
	}
	return c.finish(ctx)
}

// PointerCancel ends the gesture as if the pointer were released where it
// last was, e.g. when the pointer leaves the canvas.
func (c *Canvas) PointerCancel(ctx context.Context) error {
	return c.finish(ctx)
}

func (c *Canvas) finish(ctx context.Context) error {
	g := c.gesture
	c.gesture = Idle{}

	switch g := g.(type) {
	case *DraggingNodes:
		for _, id := range g.IDs {
			if p, ok := c.pos[id]; ok {
				c.committer.Commit(id, p)
			}
		}
	case *DrawingConnection:
		if g.TargetID == "" {
			return nil
		}
		req := graph.ConnectionRequest{
			SourceID:    g.SourceID,
			SourcePoint: g.SourceIndex,
			TargetID:    g.TargetID,
			TargetPoint: g.TargetIndex,
		}
		if _, err := c.Connect(ctx, req); err != nil {
			return err
		}
	case *BoxSelecting:
		box := g.Box()
		var ids []string
		for _, n := range c.nodesAt() {
			if box.Contains(n.Pos) {
				ids = append(ids, n.ID)
			}
		}
		c.sel.ApplyBox(ids, g.XOR)
	}
	return nil
}

// Abort cancels the active gesture without committing anything. Dragged
// nodes and the view return to where the gesture started.
func (c *Canvas) Abort() {
	switch g := c.gesture.(type) {
	case *Panning:
		c.view.Pan = g.StartPan
		c.view.Zoom = g.StartZoom
	case *DraggingNodes:
		for id, p := range g.Start {
			c.pos[id] = p
		}
	}
	c.gesture = Idle{}
}

// SetSpace records whether the pan modifier is held. Releasing it ends a pan.
func (c *Canvas) SetSpace(held bool) {
	c.space = held
	if !held {
		if _, ok := c.gesture.(*Panning); ok {
			c.gesture = Idle{}
		}
	}
}

// Wheel zooms about the pointer by the given number of notches.
func (c *Canvas) Wheel(screen geom.Point, notches int) {
	c.view.Wheel(screen, notches)
}
