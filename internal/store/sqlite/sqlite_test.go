package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/store"
)

var _ store.Graph = (*Store)(nil)

// newTestStore opens a fresh database in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func upsert(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		assertNoError(t, s.UpsertNode(context.Background(), graph.Node{ID: id, Name: id, Type: "service"}))
	}
}

func TestNodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := geom.Pt(10, 20)
	assertNoError(t, s.UpsertNode(ctx, graph.Node{ID: "api", Name: "API", Type: "service", Endpoint: "http://localhost:8080/health", Position: &p}))
	upsert(t, s, "db")

	nodes, err := s.ListNodes(ctx)
	assertNoError(t, err)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	api := nodes[0]
	if api.ID != "api" || api.Name != "API" || api.Endpoint != "http://localhost:8080/health" {
		t.Errorf("unexpected node %+v", api)
	}
	if api.Status != graph.StatusPending {
		t.Errorf("expected pending, got %s", api.Status)
	}
	if api.Position == nil || *api.Position != p {
		t.Errorf("expected position %v, got %v", p, api.Position)
	}
	if nodes[1].Position != nil {
		t.Errorf("expected no position for db, got %v", nodes[1].Position)
	}

	t.Run("upsert keeps position and status when unset", func(t *testing.T) {
		assertNoError(t, s.UpdateNodeStatus(ctx, "api", graph.StatusActive))
		assertNoError(t, s.UpsertNode(ctx, graph.Node{ID: "api", Name: "Gateway"}))
		nodes, _ := s.ListNodes(ctx)
		if nodes[0].Name != "Gateway" {
			t.Errorf("expected Gateway, got %s", nodes[0].Name)
		}
		if nodes[0].Status != graph.StatusActive {
			t.Errorf("expected active, got %s", nodes[0].Status)
		}
		if nodes[0].Position == nil || *nodes[0].Position != p {
			t.Errorf("expected position kept, got %v", nodes[0].Position)
		}
	})

	t.Run("position update", func(t *testing.T) {
		assertNoError(t, s.UpdateNodePosition(ctx, "db", -5, 7.5))
		nodes, _ := s.ListNodes(ctx)
		if nodes[1].Position == nil || *nodes[1].Position != geom.Pt(-5, 7.5) {
			t.Errorf("expected (-5,7.5), got %v", nodes[1].Position)
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		if err := s.UpdateNodePosition(ctx, "ghost", 0, 0); !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := s.DeleteNode(ctx, "ghost"); !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConnections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	upsert(t, s, "api", "db", "cache")

	req := graph.ConnectionRequest{SourceID: "api", TargetID: "db", SourcePoint: 1, TargetPoint: 2}
	c, err := s.CreateConnection(ctx, req)
	assertNoError(t, err)
	if c.ID == "" || c.Type != graph.ConnDefault {
		t.Errorf("unexpected connection %+v", c)
	}

	t.Run("listing", func(t *testing.T) {
		conns, err := s.ListConnections(ctx)
		assertNoError(t, err)
		if len(conns) != 1 || conns[0] != c {
			t.Errorf("expected [%v], got %v", c, conns)
		}
	})

	t.Run("duplicate maps to ErrDuplicate", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, req)
		if !errors.Is(err, graph.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("same nodes other points is allowed", func(t *testing.T) {
		other := req
		other.TargetPoint = 0
		other.Type = graph.ConnData
		_, err := s.CreateConnection(ctx, other)
		assertNoError(t, err)
	})

	t.Run("missing node maps to ErrNotFound", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, graph.ConnectionRequest{SourceID: "api", TargetID: "ghost"})
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("self loop", func(t *testing.T) {
		_, err := s.CreateConnection(ctx, graph.ConnectionRequest{SourceID: "db", TargetID: "db"})
		if !errors.Is(err, graph.ErrSelfLoop) {
			t.Errorf("expected ErrSelfLoop, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		assertNoError(t, s.DeleteConnection(ctx, c.ID))
		if err := s.DeleteConnection(ctx, c.ID); !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deleting a node cascades", func(t *testing.T) {
		assertNoError(t, s.DeleteNode(ctx, "db"))
		conns, _ := s.ListConnections(ctx)
		if len(conns) != 0 {
			t.Errorf("expected no connections, got %v", conns)
		}
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	upsert(t, s, "old")

	p := geom.Pt(3, 4)
	nodes := []graph.Node{{ID: "b", Name: "B", Position: &p}, {ID: "a", Name: "A"}}
	conns := []graph.Connection{
		{ID: "c1", SourceID: "a", TargetID: "b", SourcePoint: 0, TargetPoint: 0, Type: graph.ConnControl},
		{SourceID: "b", TargetID: "a"},
	}
	assertNoError(t, s.Import(ctx, nodes, conns))

	got, _ := s.ListNodes(ctx)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("expected [b a] in import order, got %v", got)
	}
	gotConns, _ := s.ListConnections(ctx)
	if len(gotConns) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(gotConns))
	}
	if gotConns[0].ID != "c1" || gotConns[0].Type != graph.ConnControl {
		t.Errorf("expected c1 control, got %+v", gotConns[0])
	}
	if gotConns[1].ID == "" || gotConns[1].Type != graph.ConnDefault {
		t.Errorf("expected generated id and default type, got %+v", gotConns[1])
	}

	t.Run("failed import leaves the graph alone", func(t *testing.T) {
		bad := []graph.Connection{{SourceID: "a", TargetID: "missing"}}
		if err := s.Import(ctx, []graph.Node{{ID: "a"}}, bad); err == nil {
			t.Fatalf("expected error")
		}
		got, _ := s.ListNodes(ctx)
		if len(got) != 2 {
			t.Errorf("expected rollback to keep 2 nodes, got %d", len(got))
		}
	})
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	s, err := New(path)
	assertNoError(t, err)
	upsert(t, s, "api")
	assertNoError(t, s.UpdateNodePosition(ctx, "api", 1, 2))
	assertNoError(t, s.Close())

	s, err = New(path)
	assertNoError(t, err)
	defer s.Close()
	nodes, _ := s.ListNodes(ctx)
	if len(nodes) != 1 || nodes[0].Position == nil || *nodes[0].Position != geom.Pt(1, 2) {
		t.Errorf("expected api at (1,2) after reopen, got %v", nodes)
	}
}
