package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexflow/internal/graph"
)

func TestDerive(t *testing.T) {
	warn := 500 * time.Millisecond
	tests := []struct {
		name string
		s    Sample
		want graph.Status
	}{
		{"fast success", Sample{Success: true, Latency: 20 * time.Millisecond}, graph.StatusActive},
		{"slow success", Sample{Success: true, Latency: time.Second}, graph.StatusWarning},
		{"at the threshold", Sample{Success: true, Latency: warn}, graph.StatusActive},
		{"failure", Sample{Latency: time.Millisecond}, graph.StatusInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.s, warn); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: time.Second, Factor: 2}
	want := []time.Duration{100, 200, 400, 800, 1000, 1000}
	for attempt, ms := range want {
		if got := b.Next(attempt); got != ms*time.Millisecond {
			t.Errorf("attempt %d: expected %v, got %v", attempt, ms*time.Millisecond, got)
		}
	}

	b.Jitter = 0.2
	for i := 0; i < 100; i++ {
		d := b.Next(1)
		if d < 160*time.Millisecond || d > 240*time.Millisecond {
			t.Fatalf("jittered delay %v outside [160ms, 240ms]", d)
		}
	}
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	if r.Len() != 0 || len(r.Newest(0)) != 0 {
		t.Fatalf("expected empty ring")
	}
	for i := 1; i <= 5; i++ {
		r.Push(Sample{Latency: time.Duration(i)})
	}
	if r.Len() != 3 || r.Cap() != 3 {
		t.Errorf("expected len 3 cap 3, got %d %d", r.Len(), r.Cap())
	}
	got := r.Newest(0)
	for i, want := range []time.Duration{5, 4, 3} {
		if got[i].Latency != want {
			t.Errorf("index %d: expected %d, got %d", i, want, got[i].Latency)
		}
	}
	if two := r.Newest(2); len(two) != 2 || two[1].Latency != 4 {
		t.Errorf("expected [5 4], got %v", two)
	}
}

func runHistoryTests(t *testing.T, h History) {
	ctx := context.Background()

	t.Run("unknown node is empty", func(t *testing.T) {
		got, err := h.Recent(ctx, "ghost", 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("bounded newest first", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			require.NoError(t, h.Record(ctx, "api", Sample{Success: i%2 == 0, Latency: time.Duration(i) * time.Millisecond}))
		}
		got, err := h.Recent(ctx, "api", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 4*time.Millisecond, got[0].Latency)
		assert.True(t, got[0].Success)
		assert.Equal(t, 2*time.Millisecond, got[2].Latency)

		one, err := h.Recent(ctx, "api", 1)
		require.NoError(t, err)
		assert.Len(t, one, 1)
	})
}

func TestMemoryHistory(t *testing.T) {
	runHistoryTests(t, NewMemoryHistory(3))
}

func TestRedisHistory(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewRedisHistory(client, 3)
	runHistoryTests(t, h)
	n, err := client.LLen(context.Background(), "hexflow:heartbeat:api").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewHTTPChecker()
	ctx := context.Background()

	up := c.Check(ctx, graph.Node{ID: "a", Endpoint: srv.URL + "/healthz"})
	assert.True(t, up.Success)
	assert.Empty(t, up.Error)

	down := c.Check(ctx, graph.Node{ID: "b", Endpoint: srv.URL + "/down"})
	assert.False(t, down.Success)
	assert.Contains(t, down.Error, "503")

	bad := c.Check(ctx, graph.Node{ID: "c", Endpoint: "://nope"})
	assert.False(t, bad.Success)
}

type staticNodes []graph.Node

func (s staticNodes) ListNodes(context.Context) ([]graph.Node, error) {
	return s, nil
}

// scriptedChecker fails the first failures probes of each node.
type scriptedChecker struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
	latency  time.Duration
}

func (c *scriptedChecker) Check(_ context.Context, n graph.Node) Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[n.ID]++
	if c.calls[n.ID] <= c.failures[n.ID] {
		return Sample{At: time.Now(), Error: "refused"}
	}
	return Sample{At: time.Now(), Success: true, Latency: c.latency}
}

type recordingWriter struct {
	mu      sync.Mutex
	updates map[string]graph.Status
}

func (w *recordingWriter) UpdateNodeStatus(_ context.Context, id string, s graph.Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates[id] = s
	return nil
}

func TestMonitorSweep(t *testing.T) {
	nodes := staticNodes{
		{ID: "api", Endpoint: "http://api"},
		{ID: "db", Endpoint: "http://db"},
		{ID: "flaky", Endpoint: "http://flaky"},
		{ID: "queue"},
	}
	checker := &scriptedChecker{
		failures: map[string]int{"db": 10, "flaky": 2},
		calls:    map[string]int{},
	}
	settings := DefaultSettings()
	settings.Backoff = Backoff{Base: time.Millisecond, Factor: 1}

	m := NewMonitor(nodes, checker, NewMemoryHistory(10), settings)
	var slept []time.Duration
	var sleptMu sync.Mutex
	m.sleep = func(_ context.Context, d time.Duration) error {
		sleptMu.Lock()
		slept = append(slept, d)
		sleptMu.Unlock()
		return nil
	}
	var mu sync.Mutex
	updates := map[string]graph.Status{}
	m.OnUpdate = func(u Update) {
		mu.Lock()
		updates[u.NodeID] = u.Status
		mu.Unlock()
	}
	w := &recordingWriter{updates: map[string]graph.Status{}}
	m.Writer = w

	require.NoError(t, m.Sweep(context.Background()))

	assert.Equal(t, map[string]graph.Status{
		"api":   graph.StatusActive,
		"db":    graph.StatusInactive,
		"flaky": graph.StatusActive,
		"queue": graph.StatusPending,
	}, updates)
	assert.Equal(t, updates, w.updates)
	assert.Equal(t, 3, checker.calls["db"], "stops after max attempts")
	assert.Equal(t, 3, checker.calls["flaky"])
	assert.Equal(t, 1, checker.calls["api"])
	assert.Len(t, slept, 4)

	samples, _ := m.History().Recent(context.Background(), "db", 0)
	require.Len(t, samples, 1, "one sample per sweep, not per attempt")
	assert.False(t, samples[0].Success)

	t.Run("unchanged status is not reported again", func(t *testing.T) {
		mu.Lock()
		updates = map[string]graph.Status{}
		mu.Unlock()
		require.NoError(t, m.Sweep(context.Background()))
		assert.Empty(t, updates)
		s, ok := m.Status("api")
		assert.True(t, ok)
		assert.Equal(t, graph.StatusActive, s)
	})
}

func TestMonitorSlowIsWarning(t *testing.T) {
	checker := &scriptedChecker{calls: map[string]int{}, latency: time.Second}
	m := NewMonitor(staticNodes{{ID: "api", Endpoint: "http://api"}}, checker, nil, DefaultSettings())
	require.NoError(t, m.Sweep(context.Background()))
	s, _ := m.Status("api")
	assert.Equal(t, graph.StatusWarning, s)
}

func TestMonitorRun(t *testing.T) {
	checker := &scriptedChecker{calls: map[string]int{}}
	settings := DefaultSettings()
	settings.Interval = time.Hour
	m := NewMonitor(staticNodes{{ID: "api", Endpoint: "http://api"}}, checker, nil, settings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	assert.Eventually(t, func() bool {
		checker.mu.Lock()
		defer checker.mu.Unlock()
		return checker.calls["api"] == 1
	}, time.Second, 5*time.Millisecond, "first sweep runs immediately")

	m.SetInterval(10 * time.Millisecond)
	assert.Eventually(t, func() bool {
		checker.mu.Lock()
		defer checker.mu.Unlock()
		return checker.calls["api"] >= 3
	}, time.Second, 5*time.Millisecond, "new interval takes effect")
	assert.Equal(t, 10*time.Millisecond, m.Settings().Interval)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
