// Package seed loads topology files: the nodes and connections
// of a graph in YAML.
//
//	nodes:
//	  api:
//	    name: API Gateway
//	    type: service
//	    endpoint: http://localhost:8080/healthz
//	    x: 120
//	    y: 80
//	connections:
//	  - from: api
//	    from_point: 0
//	    to: db
//	    to_point: 1
//	    type: data
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
)

// FileYAML is the on-disk layout. Nodes is kept as a raw mapping so the
// file order becomes the draw order.
type FileYAML struct {
	Nodes       yaml.Node        `yaml:"nodes"`
	Connections []ConnectionYAML `yaml:"connections,omitempty"`
}

type NodeYAML struct {
	Name     string   `yaml:"name,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	X        *float64 `yaml:"x,omitempty"`
	Y        *float64 `yaml:"y,omitempty"`
}

type ConnectionYAML struct {
	ID        string `yaml:"id,omitempty"`
	From      string `yaml:"from"`
	FromPoint int    `yaml:"from_point"`
	To        string `yaml:"to"`
	ToPoint   int    `yaml:"to_point"`
	Type      string `yaml:"type,omitempty"`
}

// Graph is a parsed topology.
type Graph struct {
	Nodes       []graph.Node
	Connections []graph.Connection
}

// Importer receives a parsed topology.
type Importer interface {
	Import(ctx context.Context, nodes []graph.Node, conns []graph.Connection) error
}

// Load reads a topology file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a topology and checks it references only known nodes.
func Parse(data []byte) (*Graph, error) {
	var f FileYAML
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	g := &Graph{}
	seen := map[string]bool{}
	if f.Nodes.Kind != 0 {
		if f.Nodes.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: nodes must be a mapping", f.Nodes.Line)
		}
		for i := 0; i+1 < len(f.Nodes.Content); i += 2 {
			key, val := f.Nodes.Content[i], f.Nodes.Content[i+1]
			id := key.Value
			if seen[id] {
				return nil, fmt.Errorf("line %d: duplicate node %q", key.Line, id)
			}
			var ny NodeYAML
			if err := val.Decode(&ny); err != nil {
				return nil, fmt.Errorf("node %q: %w", id, err)
			}
			n, err := ny.node(id)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", key.Line, err)
			}
			seen[id] = true
			g.Nodes = append(g.Nodes, n)
		}
	}

	for i, cy := range f.Connections {
		if !seen[cy.From] || !seen[cy.To] {
			return nil, fmt.Errorf("connection %d: %s -> %s: %w", i, cy.From, cy.To, graph.ErrNotFound)
		}
		if cy.From == cy.To {
			return nil, fmt.Errorf("connection %d: %w", i, graph.ErrSelfLoop)
		}
		c := graph.Connection{
			ID:          cy.ID,
			SourceID:    cy.From,
			SourcePoint: cy.FromPoint,
			TargetID:    cy.To,
			TargetPoint: cy.ToPoint,
			Type:        graph.ConnectionType(cy.Type),
		}
		for _, prev := range g.Connections {
			if prev.SameEndpoints(c) {
				return nil, fmt.Errorf("connection %d: %w", i, graph.ErrDuplicate)
			}
		}
		g.Connections = append(g.Connections, c)
	}
	return g, nil
}

func (ny NodeYAML) node(id string) (graph.Node, error) {
	n := graph.Node{
		ID:       id,
		Name:     ny.Name,
		Type:     ny.Type,
		Status:   graph.Status(ny.Status),
		Endpoint: ny.Endpoint,
	}
	if n.Name == "" {
		n.Name = id
	}
	if n.Status != "" && !n.Status.Valid() {
		return n, fmt.Errorf("node %q: invalid status %q", id, ny.Status)
	}
	if (ny.X == nil) != (ny.Y == nil) {
		return n, fmt.Errorf("node %q: x and y must be set together", id)
	}
	if ny.X != nil {
		p := geom.Pt(*ny.X, *ny.Y)
		n.Position = &p
	}
	return n, nil
}

// Apply imports the topology into a store.
func (g *Graph) Apply(ctx context.Context, dst Importer) error {
	if err := dst.Import(ctx, g.Nodes, g.Connections); err != nil {
		return fmt.Errorf("failed to import topology: %w", err)
	}
	return nil
}
