// Package store holds the graph.Store implementations: an in-process
// memory store and a SQLite store used by the CLI.
package store

import (
	"context"

	"hexflow/internal/graph"
)

// Graph is a full read/write graph store.
type Graph interface {
	graph.Store
	graph.StatusWriter
	UpsertNode(ctx context.Context, n graph.Node) error
	DeleteNode(ctx context.Context, id string) error
	Import(ctx context.Context, nodes []graph.Node, conns []graph.Connection) error
}
