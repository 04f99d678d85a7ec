package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hexflow/internal/graph"
	"hexflow/internal/metrics"
)

// NodeLister supplies the nodes to probe.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]graph.Node, error)
}

// Update is one status observation delivered to the observer.
type Update struct {
	NodeID string
	Status graph.Status
	Sample Sample
}

// Monitor probes every node with an endpoint once per interval. Status
// changes go to OnUpdate and, when set, to Writer. Probes run
// concurrently, so OnUpdate must be safe to call from several goroutines.
type Monitor struct {
	nodes    NodeLister
	checker  Checker
	history  History
	OnUpdate func(Update)
	Writer   graph.StatusWriter

	mu       sync.Mutex
	settings Settings
	statuses map[string]graph.Status
	reset    chan time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewMonitor(nodes NodeLister, checker Checker, history History, settings Settings) *Monitor {
	if settings.Interval <= 0 {
		settings.Interval = DefaultSettings().Interval
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 1
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = DefaultSettings().Concurrency
	}
	if history == nil {
		history = NewMemoryHistory(DefaultHistorySize)
	}
	return &Monitor{
		nodes:    nodes,
		checker:  checker,
		history:  history,
		settings: settings,
		statuses: make(map[string]graph.Status),
		reset:    make(chan time.Duration, 1),
		sleep:    sleepCtx,
	}
}

func (m *Monitor) History() History {
	return m.history
}

// Settings returns the current policy.
func (m *Monitor) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetInterval changes the heartbeat period. A running loop drops its
// current timer and starts a new one.
func (m *Monitor) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.settings.Interval = d
	m.mu.Unlock()

	select {
	case m.reset <- d:
	default:
		select {
		case <-m.reset:
		default:
		}
		m.reset <- d
	}
}

// Status returns the last derived status of a node.
func (m *Monitor) Status(id string) (graph.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.statuses[id]
	return s, ok
}

// Run sweeps immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.Settings().Interval)
	defer ticker.Stop()

	for {
		if err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Heartbeat sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-m.reset:
			ticker.Reset(d)
		case <-ticker.C:
		}
	}
}

// Sweep probes every node once.
func (m *Monitor) Sweep(ctx context.Context) error {
	nodes, err := m.nodes.ListNodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}
	settings := m.Settings()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Concurrency)
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			m.checkNode(ctx, n, settings)
			return nil
		})
	}
	return g.Wait()
}

func (m *Monitor) checkNode(ctx context.Context, n graph.Node, settings Settings) {
	if n.Endpoint == "" {
		m.observe(ctx, Update{NodeID: n.ID, Status: graph.StatusPending})
		return
	}

	var s Sample
	for attempt := 0; attempt < settings.MaxAttempts; attempt++ {
		s = m.probe(ctx, n, settings.Timeout)
		if s.Success || ctx.Err() != nil {
			break
		}
		if attempt+1 < settings.MaxAttempts {
			if err := m.sleep(ctx, settings.Backoff.Next(attempt)); err != nil {
				return
			}
		}
	}
	if ctx.Err() != nil {
		return
	}

	if err := m.history.Record(ctx, n.ID, s); err != nil {
		log.Printf("Failed to record heartbeat for %s: %v", n.ID, err)
	}
	if s.Success {
		metrics.HealthChecks.WithLabelValues(n.ID, "ok").Inc()
		metrics.HealthLatency.WithLabelValues(n.ID).Observe(s.Latency.Seconds())
	} else {
		metrics.HealthChecks.WithLabelValues(n.ID, "error").Inc()
	}
	m.observe(ctx, Update{NodeID: n.ID, Status: Derive(s, settings.WarnLatency), Sample: s})
}

func (m *Monitor) probe(ctx context.Context, n graph.Node, timeout time.Duration) Sample {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return m.checker.Check(ctx, n)
}

func (m *Monitor) observe(ctx context.Context, u Update) {
	m.mu.Lock()
	prev, seen := m.statuses[u.NodeID]
	m.statuses[u.NodeID] = u.Status
	m.mu.Unlock()

	for _, s := range []graph.Status{graph.StatusActive, graph.StatusInactive, graph.StatusWarning, graph.StatusPending} {
		v := 0.0
		if s == u.Status {
			v = 1
		}
		metrics.NodeStatus.WithLabelValues(u.NodeID, string(s)).Set(v)
	}

	if seen && prev == u.Status {
		return
	}
	if m.Writer != nil {
		if err := m.Writer.UpdateNodeStatus(ctx, u.NodeID, u.Status); err != nil {
			log.Printf("Failed to store status for %s: %v", u.NodeID, err)
		}
	}
	if m.OnUpdate != nil {
		m.OnUpdate(u)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
