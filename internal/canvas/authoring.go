package canvas

import (
	"context"
	"fmt"
	"log"

	"hexflow/internal/graph"
	"hexflow/internal/layout"
	"hexflow/internal/metrics"
)

// ConnectionCreator is the part of the graph store the authoring protocol needs.
type ConnectionCreator interface {
	CreateConnection(ctx context.Context, req graph.ConnectionRequest) (graph.Connection, error)
}

// Authoring validates drawn connections and submits them to the store.
// Nothing is added to the canvas until the store confirms the connection.
type Authoring struct {
	store  ConnectionCreator
	layout layout.Layout
}

func NewAuthoring(store ConnectionCreator, l layout.Layout) Authoring {
	return Authoring{store: store, layout: l}
}

// Validate checks req against the point layout and the known connections.
func (a Authoring) Validate(req graph.ConnectionRequest, existing []graph.Connection) error {
	if req.SourceID == req.TargetID {
		return graph.ErrSelfLoop
	}
	if !a.layout.Valid(req.SourcePoint) || !a.layout.Valid(req.TargetPoint) {
		return fmt.Errorf("%w: %d -> %d", graph.ErrInvalidPoint, req.SourcePoint, req.TargetPoint)
	}
	want := req.Connection()
	for _, c := range existing {
		if c.SameEndpoints(want) {
			return fmt.Errorf("%w: %s", graph.ErrDuplicate, c.ID)
		}
	}
	return nil
}

// Commit validates req and creates it in the store. An empty type becomes
// the default type.
func (a Authoring) Commit(ctx context.Context, req graph.ConnectionRequest, existing []graph.Connection) (graph.Connection, error) {
	if err := a.Validate(req, existing); err != nil {
		metrics.ConnectionCommits.WithLabelValues("rejected").Inc()
		return graph.Connection{}, err
	}
	if req.Type == "" {
		req.Type = graph.ConnDefault
	}

	conn, err := a.store.CreateConnection(ctx, req)
	if err != nil {
		log.Printf("Failed to create connection %s:%d -> %s:%d: %v",
			req.SourceID, req.SourcePoint, req.TargetID, req.TargetPoint, err)
		metrics.ConnectionCommits.WithLabelValues("error").Inc()
		return graph.Connection{}, err
	}
	metrics.ConnectionCommits.WithLabelValues("ok").Inc()
	return conn, nil
}
