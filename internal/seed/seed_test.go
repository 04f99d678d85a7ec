package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
	"hexflow/internal/store/memory"
)

const topology = `
nodes:
  web:
    name: Web
    type: frontend
    x: 100
    y: 200
  api:
    type: service
    endpoint: http://localhost:8080/healthz
  db:
    name: Postgres
    status: active
connections:
  - from: web
    from_point: 0
    to: api
    to_point: 1
  - from: api
    from_point: 2
    to: db
    to_point: 0
    type: data
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(topology))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("nodes keep file order", func(t *testing.T) {
		var ids []string
		for _, n := range g.Nodes {
			ids = append(ids, n.ID)
		}
		if strings.Join(ids, ",") != "web,api,db" {
			t.Errorf("expected web,api,db, got %v", ids)
		}
	})

	t.Run("fields", func(t *testing.T) {
		web, api, db := g.Nodes[0], g.Nodes[1], g.Nodes[2]
		if web.Position == nil || *web.Position != geom.Pt(100, 200) {
			t.Errorf("expected web at (100,200), got %v", web.Position)
		}
		if api.Name != "api" {
			t.Errorf("expected name to default to id, got %q", api.Name)
		}
		if api.Endpoint != "http://localhost:8080/healthz" {
			t.Errorf("unexpected endpoint %q", api.Endpoint)
		}
		if api.Position != nil {
			t.Errorf("expected no position, got %v", api.Position)
		}
		if db.Status != graph.StatusActive {
			t.Errorf("expected active, got %s", db.Status)
		}
	})

	t.Run("connections", func(t *testing.T) {
		if len(g.Connections) != 2 {
			t.Fatalf("expected 2 connections, got %d", len(g.Connections))
		}
		c := g.Connections[1]
		if c.SourceID != "api" || c.SourcePoint != 2 || c.TargetID != "db" || c.TargetPoint != 0 || c.Type != graph.ConnData {
			t.Errorf("unexpected connection %+v", c)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"unknown node", "nodes: {a: {}}\nconnections: [{from: a, to: b}]", graph.ErrNotFound},
		{"self loop", "nodes: {a: {}}\nconnections: [{from: a, to: a}]", graph.ErrSelfLoop},
		{"duplicate", "nodes: {a: {}, b: {}}\nconnections: [{from: a, to: b}, {from: a, to: b}]", graph.ErrDuplicate},
		{"half a position", "nodes: {a: {x: 1}}", nil},
		{"bad status", "nodes: {a: {status: sleeping}}", nil},
		{"nodes not a mapping", "nodes: [a, b]", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := os.WriteFile(path, []byte(topology), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	s := memory.New()
	if err := g.Apply(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nodes, _ := s.ListNodes(ctx)
	conns, _ := s.ListConnections(ctx)
	if len(nodes) != 3 || len(conns) != 2 {
		t.Errorf("expected 3 nodes and 2 connections, got %d and %d", len(nodes), len(conns))
	}
	if conns[0].Type != graph.ConnDefault {
		t.Errorf("expected default type, got %s", conns[0].Type)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
