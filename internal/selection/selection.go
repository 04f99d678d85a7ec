// Package selection tracks which nodes and which connection are selected.
package selection

import "sort"

// Listener receives selection changes. An empty id means nothing is selected.
type Listener struct {
	Node       func(id string)
	Connection func(id string)
}

// Manager holds the multi-selected node set, the primary node shown in
// detail views and the selected connection. A primary node and a selected
// connection are never set together.
type Manager struct {
	nodes      map[string]struct{}
	primary    string
	connection string
	listener   Listener
}

func New(l Listener) *Manager {
	return &Manager{nodes: make(map[string]struct{}), listener: l}
}

func (m *Manager) Has(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

func (m *Manager) Len() int {
	return len(m.nodes)
}

// IDs returns the selected node ids in sorted order.
func (m *Manager) IDs() []string {
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) Primary() string {
	return m.primary
}

func (m *Manager) Connection() string {
	return m.connection
}

// Select makes id the sole selection and the primary node.
func (m *Manager) Select(id string) {
	m.change(func() {
		m.nodes = map[string]struct{}{id: {}}
		m.primary = id
		m.connection = ""
	})
}

// Toggle flips membership of id, as shift-click does.
func (m *Manager) Toggle(id string) {
	m.change(func() {
		if m.Has(id) {
			delete(m.nodes, id)
		} else {
			m.nodes[id] = struct{}{}
		}
		m.connection = ""
		m.collapse()
	})
}

// ApplyBox selects ids, replacing the selection or, with xor, toggling
// each of them in the existing selection.
func (m *Manager) ApplyBox(ids []string, xor bool) {
	m.change(func() {
		if !xor {
			m.nodes = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			if xor && m.Has(id) {
				delete(m.nodes, id)
			} else {
				m.nodes[id] = struct{}{}
			}
		}
		m.connection = ""
		m.collapse()
	})
}

// SelectConnection selects a connection. Unless keepNodes is set the node
// selection is cleared.
func (m *Manager) SelectConnection(id string, keepNodes bool) {
	m.change(func() {
		if !keepNodes {
			m.nodes = make(map[string]struct{})
		}
		m.primary = ""
		m.connection = id
	})
}

func (m *Manager) Clear() {
	m.change(func() {
		m.nodes = make(map[string]struct{})
		m.primary = ""
		m.connection = ""
	})
}

// Retain drops selected nodes and the selected connection that no longer
// exist.
func (m *Manager) Retain(nodeExists, connExists func(id string) bool) {
	m.change(func() {
		for id := range m.nodes {
			if !nodeExists(id) {
				delete(m.nodes, id)
			}
		}
		if m.primary != "" && !nodeExists(m.primary) {
			m.primary = ""
		}
		if m.connection != "" && !connExists(m.connection) {
			m.connection = ""
		}
	})
}

// collapse makes the single remaining member primary, or clears primary.
func (m *Manager) collapse() {
	m.primary = ""
	if len(m.nodes) == 1 {
		for id := range m.nodes {
			m.primary = id
		}
	}
}

func (m *Manager) change(fn func()) {
	prevNodes := m.IDs()
	prevPrimary, prevConn := m.primary, m.connection
	fn()

	nodesChanged := prevPrimary != m.primary || !equal(prevNodes, m.IDs())
	if nodesChanged && m.listener.Node != nil {
		m.listener.Node(m.primary)
	}
	if prevConn != m.connection && m.listener.Connection != nil {
		m.listener.Connection(m.connection)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
