package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hexflow/internal/canvas"
	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/health"
	"hexflow/internal/render"
	"hexflow/internal/store"
)

type model struct {
	width          int
	height         int
	canvas         *canvas.Canvas
	monitor        *health.Monitor
	mode           Mode
	helpScroll     int
	labels         bool
	pressed        bool
	undoStack      []Action
	redoStack      []Action
	selected       *selectionInfo
	errorMessage   string
	successMessage string
}

func newModel(st store.Graph, opts canvas.Options) model {
	sel := &selectionInfo{}
	opts.OnSelectNode = func(n *graph.Node) { sel.node = n }
	opts.OnSelectConnection = func(c *graph.Connection) { sel.conn = c }
	return model{
		canvas:   canvas.New(st, opts),
		mode:     ModeNormal,
		selected: sel,
	}
}

func (m model) Init() tea.Cmd {
	return refresh
}

func refresh() tea.Msg {
	return refreshMsg{}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.canvas.Refresh(ctx); err != nil {
			m.errorMessage = err.Error()
		}
		return m, nil

	case statusMsg:
		m.canvas.SetStatus(msg.NodeID, msg.Status)
		return m, nil

	case commitErrMsg:
		m.errorMessage = fmt.Sprintf("failed to save position of %s: %v", msg.id, msg.err)
		return m, nil

	case tea.MouseMsg:
		if m.mode != ModeHelp {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.mode == ModeHelp {
		switch key {
		case "esc", "q", "?":
			m.mode = ModeNormal
			m.helpScroll = 0
		case "j", "down":
			if m.helpScroll < len(helpLines)-1 {
				m.helpScroll++
			}
		case "k", "up":
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		case "ctrl+c":
			return m.quit()
		}
		return *m, nil
	}

	m.errorMessage = ""
	m.successMessage = ""
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch key {
	case "ctrl+c", "q":
		return m.quit()
	case "?":
		m.mode = ModeHelp
	case "esc":
		m.canvas.Abort()
		m.pressed = false
	case " ":
		m.canvas.SetSpace(!m.canvas.SpaceHeld())
		if m.canvas.SpaceHeld() {
			m.mode = ModePan
		} else {
			m.mode = ModeNormal
		}
	case "h", "left", "H", "shift+left",
		"l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up",
		"j", "down", "J", "shift+down":
		m.handlePan(key, m.getPanSpeed(key))
	case "+", "=":
		m.canvas.Wheel(m.center(), 1)
	case "-", "_":
		m.canvas.Wheel(m.center(), -1)
	case "0":
		m.canvas.ResetView()
	case "x", "delete", "backspace":
		m.deleteSelectedConnection(ctx)
	case "g":
		m.autoLayout()
	case "r":
		if err := m.canvas.Refresh(ctx); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Refreshed"
		}
	case "y":
		m.copySelection()
	case "t":
		m.labels = !m.labels
	case "[", "]":
		m.adjustInterval(key)
	case "u":
		m.undo(ctx)
	case "U", "ctrl+r":
		m.redo(ctx)
	}
	return *m, nil
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.canvas.Close()
	return *m, tea.Quit
}

// handleMouse maps terminal mouse events to canvas pointer events. Only
// press, motion and release of the left button drive gestures. A pressed
// pointer that leaves the canvas rows cancels the gesture.
func (m *model) handleMouse(msg tea.MouseMsg) {
	p := canvas.Pointer{
		Pos:    render.CellCenter(msg.X, msg.Y),
		Button: canvas.ButtonPrimary,
		Shift:  msg.Shift,
	}
	onCanvas := m.height == 0 || msg.Y < m.height-statusRows
	left := msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone

	switch msg.Type {
	case tea.MouseWheelUp:
		m.canvas.Wheel(p.Pos, 1)
	case tea.MouseWheelDown:
		m.canvas.Wheel(p.Pos, -1)
	case tea.MouseLeft:
		if !onCanvas {
			if m.pressed {
				m.cancel()
			}
			break
		}
		if m.pressed {
			m.canvas.PointerMove(p)
			break
		}
		m.pressed = true
		m.errorMessage = ""
		m.successMessage = ""
		m.canvas.PointerDown(p)
	case tea.MouseMotion:
		if !left {
			break
		}
		if !onCanvas {
			if m.pressed {
				m.cancel()
			}
			break
		}
		m.canvas.PointerMove(p)
	case tea.MouseRelease:
		if !left || !m.pressed {
			break
		}
		m.pressed = false
		m.release(p)
	case tea.MouseRight, tea.MouseMiddle:
		button := canvas.ButtonSecondary
		if msg.Type == tea.MouseMiddle {
			button = canvas.ButtonMiddle
		}
		m.canvas.PointerDown(canvas.Pointer{Pos: p.Pos, Button: button, Shift: p.Shift})
	}
}

func (m *model) release(p canvas.Pointer) {
	m.finishGesture(func(ctx context.Context) error {
		return m.canvas.PointerUp(ctx, p)
	})
}

// cancel ends the gesture where the pointer was last seen on the canvas.
func (m *model) cancel() {
	m.pressed = false
	m.finishGesture(m.canvas.PointerCancel)
}

// finishGesture runs finish and records what the gesture changed for undo.
func (m *model) finishGesture(finish func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var before map[string]geom.Point
	if g, ok := m.canvas.Gesture().(*canvas.DraggingNodes); ok {
		before = make(map[string]geom.Point, len(g.Start))
		for id, pt := range g.Start {
			before[id] = pt
		}
	}
	_, drawing := m.canvas.Gesture().(*canvas.DrawingConnection)
	count := len(m.canvas.Connections())

	if err := finish(ctx); err != nil {
		m.errorMessage = connectionError(err)
		return
	}

	if before != nil {
		after := make(map[string]geom.Point, len(before))
		moved := false
		for id, start := range before {
			if pos, ok := m.canvas.Position(id); ok {
				after[id] = pos
				moved = moved || pos != start
			}
		}
		if moved {
			m.recordAction(ActionMoveNodes, MoveNodesData{Positions: after}, MoveNodesData{Positions: before})
		}
	}
	if conns := m.canvas.Connections(); drawing && len(conns) > count {
		c := conns[len(conns)-1]
		m.recordAction(ActionAddConnection, ConnectionData{Connection: c}, nil)
		m.successMessage = fmt.Sprintf("Connected %s to %s", c.SourceID, c.TargetID)
	}
}

func (m *model) deleteSelectedConnection(ctx context.Context) {
	id := m.canvas.Selection().Connection()
	if id == "" {
		m.errorMessage = "no connection selected"
		return
	}
	var conn graph.Connection
	for _, c := range m.canvas.Connections() {
		if c.ID == id {
			conn = c
		}
	}
	if err := m.canvas.DeleteSelectedConnection(ctx); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.recordAction(ActionDeleteConnection, ConnectionData{Connection: conn}, nil)
	m.successMessage = "Connection deleted"
}

func (m *model) autoLayout() {
	if _, idle := m.canvas.Gesture().(canvas.Idle); !idle {
		return
	}
	before := m.canvas.Positions()
	m.canvas.AutoLayout()
	m.recordAction(ActionMoveNodes, MoveNodesData{Positions: m.canvas.Positions()}, MoveNodesData{Positions: before})
	m.successMessage = "Arranged in a grid"
}

// adjustInterval halves or doubles the heartbeat period.
func (m *model) adjustInterval(key string) {
	if m.monitor == nil {
		m.errorMessage = "health monitor is not running"
		return
	}
	d := m.monitor.Settings().Interval
	if key == "[" {
		d /= 2
	} else {
		d *= 2
	}
	if d < minHeartbeat {
		d = minHeartbeat
	}
	if d > maxHeartbeat {
		d = maxHeartbeat
	}
	m.monitor.SetInterval(d)
	m.successMessage = fmt.Sprintf("Heartbeat every %s", d)
}

func (m model) center() geom.Point {
	rows := m.height - statusRows
	if rows < 1 {
		rows = 1
	}
	return geom.Pt(float64(m.width*render.CellWidth)/2, float64(rows*render.CellHeight)/2)
}

func connectionError(err error) string {
	switch {
	case errors.Is(err, graph.ErrSelfLoop):
		return "cannot connect a node to itself"
	case errors.Is(err, graph.ErrDuplicate):
		return "those points are already connected"
	case errors.Is(err, graph.ErrInvalidPoint):
		return "invalid connection point"
	}
	return fmt.Sprintf("failed to create connection: %v", err)
}
