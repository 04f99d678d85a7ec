// Package canvas is the interaction core of the editor. It owns the
// viewport, local node positions, the selection and the active gesture,
// and turns pointer and key events into graph store calls.
//
// A Canvas is not safe for concurrent use. All events must be delivered
// from one goroutine; only position commits run in the background.
package canvas

import (
	"context"
	"fmt"
	"log"
	"time"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/hittest"
	"hexflow/internal/layout"
	"hexflow/internal/selection"
	"hexflow/internal/viewport"
)

type Options struct {
	Layout        layout.Layout
	Curvature     float64
	Seed          int64
	CommitTimeout time.Duration

	// OnSelectNode receives the primary node, or nil.
	OnSelectNode func(*graph.Node)
	// OnSelectConnection receives the selected connection, or nil.
	OnSelectConnection func(*graph.Connection)
}

func DefaultOptions() Options {
	return Options{
		Layout:    layout.Default(),
		Curvature: geom.DefaultCurvature,
		Seed:      1,
	}
}

type Canvas struct {
	store     graph.Store
	opts      Options
	engine    hittest.Engine
	authoring Authoring
	committer *Committer
	placer    *layout.Placer

	view    viewport.Viewport
	nodes   []graph.Node
	pos     map[string]geom.Point
	conns   []graph.Connection
	sel     *selection.Manager
	gesture Gesture
	hover   hittest.Hit
	space   bool
}

func New(store graph.Store, opts Options) *Canvas {
	if opts.Layout.Count == 0 {
		opts.Layout = layout.Default()
	}
	if opts.Curvature == 0 {
		opts.Curvature = geom.DefaultCurvature
	}

	engine := hittest.NewEngine(opts.Layout)
	engine.Curvature = opts.Curvature

	c := &Canvas{
		store:     store,
		opts:      opts,
		engine:    engine,
		authoring: NewAuthoring(store, opts.Layout),
		committer: NewCommitter(store, opts.CommitTimeout),
		placer:    layout.NewPlacer(opts.Seed),
		view:      viewport.New(),
		pos:       make(map[string]geom.Point),
		gesture:   Idle{},
	}
	c.sel = selection.New(selection.Listener{
		Node: func(id string) {
			if c.opts.OnSelectNode != nil {
				c.opts.OnSelectNode(c.nodePtr(id))
			}
		},
		Connection: func(id string) {
			if c.opts.OnSelectConnection != nil {
				c.opts.OnSelectConnection(c.connPtr(id))
			}
		},
	})
	return c
}

// Close waits for queued position commits and stops the committer.
func (c *Canvas) Close() {
	c.committer.Close()
}

// Committer exposes the background position writer.
func (c *Canvas) Committer() *Committer {
	return c.committer
}

// Refresh reloads nodes and connections from the store.
func (c *Canvas) Refresh(ctx context.Context) error {
	nodes, err := c.store.ListNodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}
	conns, err := c.store.ListConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}
	c.Apply(nodes, conns)
	return nil
}

// Apply replaces the graph with what the store reported. Stored positions
// override local ones except for nodes being dragged; nodes without any
// position get a placeholder. Nodes no longer reported lose their position
// and leave the selection and any gesture.
func (c *Canvas) Apply(nodes []graph.Node, conns []graph.Connection) {
	dragging := map[string]bool{}
	if g, ok := c.gesture.(*DraggingNodes); ok {
		for _, id := range g.IDs {
			dragging[id] = true
		}
	}

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seen[n.ID] = true
		switch {
		case dragging[n.ID]:
		case n.Position != nil:
			c.pos[n.ID] = *n.Position
		default:
			if _, ok := c.pos[n.ID]; !ok {
				c.pos[n.ID] = c.placer.Next()
			}
		}
	}
	for id := range c.pos {
		if !seen[id] {
			delete(c.pos, id)
		}
	}

	c.nodes = append(c.nodes[:0:0], nodes...)
	c.conns = make([]graph.Connection, 0, len(conns))
	for _, conn := range conns {
		if seen[conn.SourceID] && seen[conn.TargetID] {
			c.conns = append(c.conns, conn)
		}
	}

	c.sel.Retain(func(id string) bool { return seen[id] }, c.hasConn)
	c.pruneGesture(seen)
	if c.hover.Kind == hittest.Edge && !c.hasConn(c.hover.ConnectionID) ||
		c.hover.OnNode() && !seen[c.hover.NodeID] {
		c.hover = hittest.Hit{}
	}
}

func (c *Canvas) pruneGesture(seen map[string]bool) {
	switch g := c.gesture.(type) {
	case *DraggingNodes:
		ids := g.IDs[:0]
		for _, id := range g.IDs {
			if seen[id] {
				ids = append(ids, id)
			} else {
				delete(g.Start, id)
			}
		}
		g.IDs = ids
		if len(ids) == 0 {
			c.gesture = Idle{}
		}
	case *DrawingConnection:
		if !seen[g.SourceID] {
			c.gesture = Idle{}
		} else if g.TargetID != "" && !seen[g.TargetID] {
			g.TargetID = ""
		}
	}
}

// SetStatus records a health observation for a node.
func (c *Canvas) SetStatus(id string, status graph.Status) {
	for i := range c.nodes {
		if c.nodes[i].ID == id {
			c.nodes[i].Status = status
			return
		}
	}
}

// DeleteSelectedConnection removes the selected connection through the store.
func (c *Canvas) DeleteSelectedConnection(ctx context.Context) error {
	id := c.sel.Connection()
	if id == "" {
		return nil
	}
	return c.DeleteConnection(ctx, id)
}

// DeleteConnection removes a connection through the store and, on success,
// from the canvas.
func (c *Canvas) DeleteConnection(ctx context.Context, id string) error {
	if err := c.store.DeleteConnection(ctx, id); err != nil {
		log.Printf("Failed to delete connection %s: %v", id, err)
		return err
	}
	for i, conn := range c.conns {
		if conn.ID == id {
			c.conns = append(c.conns[:i], c.conns[i+1:]...)
			break
		}
	}
	c.sel.Retain(func(string) bool { return true }, c.hasConn)
	if c.hover.ConnectionID == id {
		c.hover = hittest.Hit{}
	}
	return nil
}

// AutoLayout rearranges every node and commits the new positions. It does
// nothing while a gesture is active.
func (c *Canvas) AutoLayout() {
	if _, ok := c.gesture.(Idle); !ok {
		return
	}
	ids := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		ids[i] = n.ID
	}
	for id, p := range layout.Force(ids, geom.Pt(layout.NodeSize*2, layout.NodeSize*2)) {
		c.pos[id] = p
		c.committer.Commit(id, p)
	}
}

// MoveNodes sets node positions and commits them, as a drag would. Unknown
// ids are ignored. It does nothing while a gesture is active.
func (c *Canvas) MoveNodes(pos map[string]geom.Point) {
	if _, ok := c.gesture.(Idle); !ok {
		return
	}
	for id, p := range pos {
		if _, ok := c.pos[id]; !ok {
			continue
		}
		c.pos[id] = p
		c.committer.Commit(id, p)
	}
}

// Connect creates a connection through the authoring protocol without a
// pointer gesture.
func (c *Canvas) Connect(ctx context.Context, req graph.ConnectionRequest) (graph.Connection, error) {
	conn, err := c.authoring.Commit(ctx, req, c.conns)
	if err != nil {
		return graph.Connection{}, err
	}
	if !c.hasConn(conn.ID) {
		c.conns = append(c.conns, conn)
	}
	return conn, nil
}

// PanBy shifts the view by a screen delta outside of a pointer gesture.
func (c *Canvas) PanBy(d geom.Point) {
	c.view.PanBy(d)
}

// ResetView restores zoom 1 and no pan.
func (c *Canvas) ResetView() {
	c.view.Reset()
}

func (c *Canvas) Viewport() viewport.Viewport {
	return c.view
}

func (c *Canvas) Gesture() Gesture {
	return c.gesture
}

func (c *Canvas) GestureName() string {
	return gestureName(c.gesture)
}

func (c *Canvas) Hover() hittest.Hit {
	return c.hover
}

func (c *Canvas) Selection() *selection.Manager {
	return c.sel
}

func (c *Canvas) Engine() hittest.Engine {
	return c.engine
}

func (c *Canvas) SpaceHeld() bool {
	return c.space
}

// Nodes returns the nodes in draw order.
func (c *Canvas) Nodes() []graph.Node {
	return c.nodes
}

func (c *Canvas) Connections() []graph.Connection {
	return c.conns
}

// Position returns the local world position of a node.
func (c *Canvas) Position(id string) (geom.Point, bool) {
	p, ok := c.pos[id]
	return p, ok
}

// Positions returns a copy of every known node position.
func (c *Canvas) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(c.pos))
	for id, p := range c.pos {
		out[id] = p
	}
	return out
}

// Node returns a node by id.
func (c *Canvas) Node(id string) (graph.Node, bool) {
	for _, n := range c.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

func (c *Canvas) nodesAt() []hittest.NodeAt {
	out := make([]hittest.NodeAt, 0, len(c.nodes))
	for _, n := range c.nodes {
		if p, ok := c.pos[n.ID]; ok {
			out = append(out, hittest.NodeAt{ID: n.ID, Pos: p})
		}
	}
	return out
}

// HitTest resolves a screen point against the current scene.
func (c *Canvas) HitTest(screen geom.Point) hittest.Hit {
	return c.engine.Test(c.view.ScreenToWorld(screen), c.nodesAt(), c.conns)
}

func (c *Canvas) hasConn(id string) bool {
	return c.connPtr(id) != nil
}

func (c *Canvas) nodePtr(id string) *graph.Node {
	if id == "" {
		return nil
	}
	n, ok := c.Node(id)
	if !ok {
		return nil
	}
	if p, ok := c.pos[id]; ok {
		n.Position = &p
	}
	return &n
}

func (c *Canvas) connPtr(id string) *graph.Connection {
	if id == "" {
		return nil
	}
	for _, conn := range c.conns {
		if conn.ID == id {
			cp := conn
			return &cp
		}
	}
	return nil
}
