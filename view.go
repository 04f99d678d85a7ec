package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hexflow/internal/render"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c0c0"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98c379"))
)

func (m model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}

	renderWidth := m.width
	if renderWidth < 1 {
		renderWidth = 1
	}
	renderHeight := m.height - statusRows
	if renderHeight < 1 {
		renderHeight = 1
	}

	scene := render.NewScene(m.canvas)
	scene.Labels = m.labels
	grid, err := scene.Render(renderWidth, renderHeight)
	if err != nil {
		return fmt.Sprintf("failed to render canvas: %v", err)
	}

	var result strings.Builder
	result.WriteString(strings.Join(grid.Lines(), "\n"))
	result.WriteString("\n")
	result.WriteString(m.statusLine(renderWidth))
	return result.String()
}

func (m model) statusLine(width int) string {
	status := fmt.Sprintf("Mode: %s | %s | Zoom: %.0f%%",
		m.modeString(), strings.ToUpper(m.canvas.GestureName()), m.canvas.Viewport().Zoom*100)

	if c := m.selected.conn; c != nil {
		status += fmt.Sprintf(" | Connection %s:%d → %s:%d (%s)",
			m.nodeName(c.SourceID), c.SourcePoint, m.nodeName(c.TargetID), c.TargetPoint, c.Type)
	} else if sel := m.selected.node; sel != nil {
		n := *sel
		if live, ok := m.canvas.Node(sel.ID); ok {
			n = live
		}
		status += fmt.Sprintf(" | %s [%s] %s", truncate(n.Name, 24), n.Type, n.Status)
		if extra := m.canvas.Selection().Len() - 1; extra > 0 {
			status += fmt.Sprintf(" +%d", extra)
		}
	}

	line := statusStyle.Render(status)
	switch {
	case m.errorMessage != "":
		line += statusStyle.Render(" | ") + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		line += statusStyle.Render(" | ") + successStyle.Render(m.successMessage)
	default:
		line += statusStyle.Render(" | ? for help | q to quit")
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m model) nodeName(id string) string {
	if n, ok := m.canvas.Node(id); ok && n.Name != "" {
		return n.Name
	}
	return id
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModePan:
		return "PAN"
	case ModeHelp:
		return "HELP"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"hexflow Help",
	"============",
	"",
	"Mouse:",
	"------",
	"  Drag node           Move the node, or every selected node",
	"  Shift+click node    Add or remove the node from the selection",
	"  Drag output point   Draw a connection, release on another node",
	"  Click connection    Select the connection",
	"  Drag empty space    Select nodes inside the box",
	"  Shift+drag          Toggle nodes inside the box",
	"  Wheel               Zoom about the cursor",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→     Pan the view",
	"  Shift+h/j/k/l       Pan 4x faster",
	"  Space               Toggle pan mode, then drag anywhere to pan",
	"  +/-                 Zoom in/out about the center",
	"  0                   Reset zoom and pan",
	"",
	"Editing:",
	"--------",
	"  x/Delete            Delete the selected connection",
	"  g                   Arrange all nodes in a grid",
	"  y                   Copy selected ids to the clipboard",
	"  u                   Undo last action",
	"  U/Ctrl+R            Redo last undone action",
	"",
	"General:",
	"--------",
	"  r                   Reload nodes and connections from the store",
	"  [/]                 Halve/double the heartbeat interval",
	"  t                   Toggle raster labels",
	"  Esc                 Cancel the current gesture",
	"  ?                   Toggle this help screen",
	"  q/Ctrl+C            Quit",
}

func (m model) helpView() string {
	visibleHeight := m.height - statusRows
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	startLine := m.helpScroll
	if last := len(helpLines) - visibleHeight; startLine > last {
		startLine = last
	}
	if startLine < 0 {
		startLine = 0
	}
	endLine := startLine + visibleHeight
	if endLine > len(helpLines) {
		endLine = len(helpLines)
	}

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + statusLine
}
