package main

import "hexflow/internal/geom"

// handlePan moves the view by speed screen pixels. The world is dragged
// opposite to the key so the view appears to move toward it.
func (m *model) handlePan(key string, speed float64) {
	var d geom.Point
	switch key {
	case "h", "left", "H", "shift+left":
		d.X = speed
	case "l", "right", "L", "shift+right":
		d.X = -speed
	case "k", "up", "K", "shift+up":
		d.Y = speed
	case "j", "down", "J", "shift+down":
		d.Y = -speed
	}
	m.canvas.PanBy(d)
}

func (m *model) getPanSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return fastPanStep
	default:
		return panStep
	}
}
