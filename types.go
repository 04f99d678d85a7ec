package main

import (
	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/health"
)

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

// MoveNodesData is a set of node positions, before or after a move.
type MoveNodesData struct {
	Positions map[string]geom.Point
}

// ConnectionData is a connection that was added or removed. The id
// changes each time undo or redo recreates it.
type ConnectionData struct {
	Connection graph.Connection
}

// selectionInfo is filled by the canvas selection callbacks.
type selectionInfo struct {
	node *graph.Node
	conn *graph.Connection
}

type statusMsg health.Update

type commitErrMsg struct {
	id  string
	err error
}

type refreshMsg struct{}
