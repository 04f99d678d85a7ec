package health

import (
	"context"
	"sync"
)

const DefaultHistorySize = 50

// History stores recent samples per node.
type History interface {
	Record(ctx context.Context, nodeID string, s Sample) error
	// Recent returns up to n samples, newest first. n <= 0 means all.
	Recent(ctx context.Context, nodeID string, n int) ([]Sample, error)
}

// Ring is a fixed-capacity buffer that evicts the oldest sample.
type Ring struct {
	buf  []Sample
	next int
	full bool
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Ring{buf: make([]Sample, capacity)}
}

func (r *Ring) Push(s Sample) {
	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *Ring) Len() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

func (r *Ring) Cap() int {
	return len(r.buf)
}

// Newest returns up to n samples, newest first.
func (r *Ring) Newest(n int) []Sample {
	l := r.Len()
	if n <= 0 || n > l {
		n = l
	}
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		idx := (r.next - 1 - i + len(r.buf)) % len(r.buf)
		out[i] = r.buf[idx]
	}
	return out
}

// MemoryHistory keeps one Ring per node.
type MemoryHistory struct {
	mu       sync.Mutex
	capacity int
	rings    map[string]*Ring
}

func NewMemoryHistory(capacity int) *MemoryHistory {
	return &MemoryHistory{capacity: capacity, rings: make(map[string]*Ring)}
}

func (h *MemoryHistory) Record(_ context.Context, nodeID string, s Sample) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rings[nodeID]
	if !ok {
		r = NewRing(h.capacity)
		h.rings[nodeID] = r
	}
	r.Push(s)
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, nodeID string, n int) ([]Sample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rings[nodeID]
	if !ok {
		return nil, nil
	}
	return r.Newest(n), nil
}
