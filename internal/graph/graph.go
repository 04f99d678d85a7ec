package graph

import (
	"context"
	"errors"

	"hexflow/internal/geom"
)

var (
	ErrNotFound     = errors.New("graph: not found")
	ErrDuplicate    = errors.New("graph: duplicate connection")
	ErrSelfLoop     = errors.New("graph: connection from a node to itself")
	ErrInvalidPoint = errors.New("graph: invalid connection point")
)

// Status is the health of a node as last observed.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusWarning  Status = "warning"
	StatusPending  Status = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusWarning, StatusPending:
		return true
	}
	return false
}

// ConnectionType determines how an edge is drawn.
type ConnectionType string

const (
	ConnDefault   ConnectionType = "default"
	ConnData      ConnectionType = "data"
	ConnControl   ConnectionType = "control"
	ConnReference ConnectionType = "reference"
)

// PathKind maps the connection type to its edge shape. Unknown types draw
// like default.
func (t ConnectionType) PathKind() geom.PathKind {
	switch t {
	case ConnData:
		return geom.KindBowed
	case ConnControl:
		return geom.KindZigzag
	case ConnReference:
		return geom.KindStraight
	}
	return geom.KindCurve
}

type Node struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Status   Status      `json:"status"`
	Endpoint string      `json:"endpoint,omitempty"`
	Position *geom.Point `json:"position,omitempty"`
}

type Connection struct {
	ID          string         `json:"id"`
	SourceID    string         `json:"source"`
	TargetID    string         `json:"target"`
	SourcePoint int            `json:"source_point"`
	TargetPoint int            `json:"target_point"`
	Type        ConnectionType `json:"type"`
}

// SameEndpoints reports whether c and o join the same points of the same nodes.
func (c Connection) SameEndpoints(o Connection) bool {
	return c.SourceID == o.SourceID && c.TargetID == o.TargetID &&
		c.SourcePoint == o.SourcePoint && c.TargetPoint == o.TargetPoint
}

// Involves reports whether the connection touches the node.
func (c Connection) Involves(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

// ConnectionRequest describes a connection to be created.
type ConnectionRequest struct {
	SourceID    string
	TargetID    string
	SourcePoint int
	TargetPoint int
	Type        ConnectionType
}

// Connection returns the request as an unsaved connection.
func (r ConnectionRequest) Connection() Connection {
	return Connection{
		SourceID:    r.SourceID,
		TargetID:    r.TargetID,
		SourcePoint: r.SourcePoint,
		TargetPoint: r.TargetPoint,
		Type:        r.Type,
	}
}

// Store is the graph collaborator consumed by the canvas.
type Store interface {
	ListNodes(ctx context.Context) ([]Node, error)
	ListConnections(ctx context.Context) ([]Connection, error)
	CreateConnection(ctx context.Context, req ConnectionRequest) (Connection, error)
	DeleteConnection(ctx context.Context, id string) error
	UpdateNodePosition(ctx context.Context, id string, x, y float64) error
}

// StatusWriter is implemented by stores that persist health status.
type StatusWriter interface {
	UpdateNodeStatus(ctx context.Context, id string, status Status) error
}
