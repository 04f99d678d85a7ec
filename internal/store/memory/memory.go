package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
)

// Store is a graph.Store kept in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]graph.Node
	order  []string
	conns  map[string]graph.Connection
	corder []string
}

func New() *Store {
	return &Store{
		nodes: make(map[string]graph.Node),
		conns: make(map[string]graph.Connection),
	}
}

// UpsertNode inserts or replaces a node. Insertion order is kept.
func (s *Store) UpsertNode(_ context.Context, n graph.Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if n.Status == "" {
		n.Status = graph.StatusPending
	}
	n.Position = copyPoint(n.Position)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[n.ID]; !ok {
		s.order = append(s.order, n.ID)
	}
	s.nodes[n.ID] = n
	return nil
}

// DeleteNode removes a node and every connection touching it.
func (s *Store) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("node %s: %w", id, graph.ErrNotFound)
	}
	delete(s.nodes, id)
	s.order = remove(s.order, id)
	for cid, c := range s.conns {
		if c.Involves(id) {
			delete(s.conns, cid)
			s.corder = remove(s.corder, cid)
		}
	}
	return nil
}

func (s *Store) ListNodes(_ context.Context) ([]graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Node, 0, len(s.order))
	for _, id := range s.order {
		n := s.nodes[id]
		n.Position = copyPoint(n.Position)
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) ListConnections(_ context.Context) ([]graph.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Connection, 0, len(s.corder))
	for _, id := range s.corder {
		out = append(out, s.conns[id])
	}
	return out, nil
}

// CreateConnection stores req under a new id. Both nodes must exist and
// the endpoints must not already be joined.
func (s *Store) CreateConnection(_ context.Context, req graph.ConnectionRequest) (graph.Connection, error) {
	if req.SourceID == req.TargetID {
		return graph.Connection{}, graph.ErrSelfLoop
	}
	if req.Type == "" {
		req.Type = graph.ConnDefault
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range []string{req.SourceID, req.TargetID} {
		if _, ok := s.nodes[id]; !ok {
			return graph.Connection{}, fmt.Errorf("node %s: %w", id, graph.ErrNotFound)
		}
	}
	c := req.Connection()
	for _, existing := range s.conns {
		if existing.SameEndpoints(c) {
			return graph.Connection{}, fmt.Errorf("%w: %s", graph.ErrDuplicate, existing.ID)
		}
	}
	c.ID = uuid.New().String()
	s.conns[c.ID] = c
	s.corder = append(s.corder, c.ID)
	return c, nil
}

func (s *Store) DeleteConnection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[id]; !ok {
		return fmt.Errorf("connection %s: %w", id, graph.ErrNotFound)
	}
	delete(s.conns, id)
	s.corder = remove(s.corder, id)
	return nil
}

func (s *Store) UpdateNodePosition(_ context.Context, id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("node %s: %w", id, graph.ErrNotFound)
	}
	p := geom.Pt(x, y)
	n.Position = &p
	s.nodes[id] = n
	return nil
}

func (s *Store) UpdateNodeStatus(_ context.Context, id string, status graph.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("node %s: %w", id, graph.ErrNotFound)
	}
	n.Status = status
	s.nodes[id] = n
	return nil
}

// Import replaces the whole graph. Connections keep their ids when set.
func (s *Store) Import(_ context.Context, nodes []graph.Node, conns []graph.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]graph.Node, len(nodes))
	s.order = s.order[:0]
	for _, n := range nodes {
		if n.Status == "" {
			n.Status = graph.StatusPending
		}
		n.Position = copyPoint(n.Position)
		if _, ok := s.nodes[n.ID]; !ok {
			s.order = append(s.order, n.ID)
		}
		s.nodes[n.ID] = n
	}

	s.conns = make(map[string]graph.Connection, len(conns))
	s.corder = s.corder[:0]
	for _, c := range conns {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Type == "" {
			c.Type = graph.ConnDefault
		}
		s.conns[c.ID] = c
		s.corder = append(s.corder, c.ID)
	}
	return nil
}

// NodeIDs returns every node id, sorted.
func (s *Store) NodeIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := append([]string(nil), s.order...)
	sort.Strings(ids)
	return ids
}

func copyPoint(p *geom.Point) *geom.Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
