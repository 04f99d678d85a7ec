package memory

import (
	"context"
	"errors"
	"testing"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/store"
)

var _ store.Graph = (*Store)(nil)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()
	for _, id := range []string{"api", "db", "cache"} {
		if err := s.UpsertNode(ctx, graph.Node{ID: id, Name: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return s
}

func TestNodes(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	t.Run("listing keeps insertion order", func(t *testing.T) {
		nodes, _ := s.ListNodes(ctx)
		if len(nodes) != 3 || nodes[0].ID != "api" || nodes[2].ID != "cache" {
			t.Errorf("expected api, db, cache, got %v", nodes)
		}
		if nodes[0].Status != graph.StatusPending {
			t.Errorf("expected pending status, got %s", nodes[0].Status)
		}
	})

	t.Run("position update", func(t *testing.T) {
		if err := s.UpdateNodePosition(ctx, "db", 12, 34); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		nodes, _ := s.ListNodes(ctx)
		if nodes[1].Position == nil || *nodes[1].Position != geom.Pt(12, 34) {
			t.Errorf("expected (12,34), got %v", nodes[1].Position)
		}
		nodes[1].Position.X = 99
		again, _ := s.ListNodes(ctx)
		if again[1].Position.X != 12 {
			t.Errorf("listing leaked internal state")
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		err := s.UpdateNodePosition(ctx, "nope", 0, 0)
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("status must be valid", func(t *testing.T) {
		if err := s.UpdateNodeStatus(ctx, "api", "broken"); err == nil {
			t.Errorf("expected error for invalid status")
		}
		if err := s.UpdateNodeStatus(ctx, "api", graph.StatusActive); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConnections(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	req := graph.ConnectionRequest{SourceID: "api", TargetID: "db", SourcePoint: 0, TargetPoint: 1}

	c, err := s.CreateConnection(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" {
		t.Errorf("expected an id")
	}
	if c.Type != graph.ConnDefault {
		t.Errorf("expected default type, got %s", c.Type)
	}

	t.Run("duplicate endpoints", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, req)
		if !errors.Is(err, graph.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("self loop", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, graph.ConnectionRequest{SourceID: "db", TargetID: "db"})
		if !errors.Is(err, graph.ErrSelfLoop) {
			t.Errorf("expected ErrSelfLoop, got %v", err)
		}
	})

	t.Run("missing node", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, graph.ConnectionRequest{SourceID: "api", TargetID: "ghost"})
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deleting a node cascades", func(t *testing.T) {
		if err := s.DeleteNode(ctx, "db"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		conns, _ := s.ListConnections(ctx)
		if len(conns) != 0 {
			t.Errorf("expected no connections, got %d", len(conns))
		}
		if err := s.DeleteConnection(ctx, c.ID); !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	p := geom.Pt(1, 2)
	err := s.Import(ctx,
		[]graph.Node{{ID: "a", Position: &p}, {ID: "b"}},
		[]graph.Connection{{SourceID: "a", TargetID: "b"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := s.NodeIDs(); len(ids) != 2 || ids[0] != "a" {
		t.Errorf("expected [a b], got %v", ids)
	}
	conns, _ := s.ListConnections(ctx)
	if len(conns) != 1 || conns[0].ID == "" || conns[0].Type != graph.ConnDefault {
		t.Errorf("expected one defaulted connection, got %v", conns)
	}
}
