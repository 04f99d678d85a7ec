package main

import (
	"context"
	"fmt"

	"hexflow/internal/graph"
)

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	action := Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	}
	m.undoStack = append(m.undoStack, action)
	if len(m.undoStack) > maxUndo {
		m.undoStack = m.undoStack[len(m.undoStack)-maxUndo:]
	}
	m.redoStack = m.redoStack[:0]
}

func (m *model) undo(ctx context.Context) {
	if len(m.undoStack) == 0 {
		m.errorMessage = "nothing to undo"
		return
	}

	lastIndex := len(m.undoStack) - 1
	action := m.undoStack[lastIndex]
	m.undoStack = m.undoStack[:lastIndex]

	var err error
	switch action.Type {
	case ActionMoveNodes:
		data := action.Inverse.(MoveNodesData)
		m.canvas.MoveNodes(data.Positions)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		err = m.canvas.DeleteConnection(ctx, data.Connection.ID)
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		action.Data, err = m.reconnect(ctx, data)
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("undo failed: %v", err)
		return
	}

	m.redoStack = append(m.redoStack, action)
}

func (m *model) redo(ctx context.Context) {
	if len(m.redoStack) == 0 {
		m.errorMessage = "nothing to redo"
		return
	}

	lastIndex := len(m.redoStack) - 1
	action := m.redoStack[lastIndex]
	m.redoStack = m.redoStack[:lastIndex]

	var err error
	switch action.Type {
	case ActionMoveNodes:
		data := action.Data.(MoveNodesData)
		m.canvas.MoveNodes(data.Positions)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		action.Data, err = m.reconnect(ctx, data)
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		err = m.canvas.DeleteConnection(ctx, data.Connection.ID)
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("redo failed: %v", err)
		return
	}

	m.undoStack = append(m.undoStack, action)
}

// reconnect recreates a removed connection. The store assigns a new id,
// which is kept so the next undo or redo can find it.
func (m *model) reconnect(ctx context.Context, data ConnectionData) (interface{}, error) {
	c := data.Connection
	created, err := m.canvas.Connect(ctx, graph.ConnectionRequest{
		SourceID:    c.SourceID,
		TargetID:    c.TargetID,
		SourcePoint: c.SourcePoint,
		TargetPoint: c.TargetPoint,
		Type:        c.Type,
	})
	if err != nil {
		return data, err
	}
	return ConnectionData{Connection: created}, nil
}
