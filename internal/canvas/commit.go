package canvas

import (
	"context"
	"log"
	"sync"
	"time"

	"hexflow/internal/geom"
	"hexflow/internal/metrics"
)

const defaultCommitTimeout = 5 * time.Second

// PositionWriter is the part of the graph store the committer needs.
type PositionWriter interface {
	UpdateNodePosition(ctx context.Context, id string, x, y float64) error
}

// Committer writes node positions to the store in the background. Pending
// writes are coalesced per node so only the latest position is sent, and
// writes for one node never reorder. Failures are logged and reported to
// OnError; nothing is rolled back.
type Committer struct {
	store   PositionWriter
	timeout time.Duration
	OnError func(id string, err error)

	mu      sync.Mutex
	pending map[string]geom.Point
	order   []string
	closed  bool
	wake    chan struct{}
	wg      sync.WaitGroup
	stop    chan struct{}
	done    chan struct{}
}

func NewCommitter(store PositionWriter, timeout time.Duration) *Committer {
	if timeout <= 0 {
		timeout = defaultCommitTimeout
	}
	c := &Committer{
		store:   store,
		timeout: timeout,
		pending: make(map[string]geom.Point),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// Commit queues a position write and returns immediately.
func (c *Committer) Commit(id string, p geom.Point) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.pending[id]; !ok {
		c.order = append(c.order, id)
		c.wg.Add(1)
	}
	c.pending[id] = p
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued write has been attempted.
func (c *Committer) Flush() {
	c.wg.Wait()
}

// Close stops accepting writes, finishes the queued ones and stops the worker.
func (c *Committer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	close(c.stop)
	<-c.done
}

func (c *Committer) run() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
			c.drain()
		}
	}
}

func (c *Committer) drain() {
	for {
		c.mu.Lock()
		if len(c.order) == 0 {
			c.mu.Unlock()
			return
		}
		id := c.order[0]
		c.order = c.order[1:]
		p := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()

		c.write(id, p)
		c.wg.Done()
	}
}

func (c *Committer) write(id string, p geom.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.store.UpdateNodePosition(ctx, id, p.X, p.Y); err != nil {
		log.Printf("Failed to commit position for %s: %v", id, err)
		metrics.PositionCommits.WithLabelValues("error").Inc()
		if c.OnError != nil {
			c.OnError(id, err)
		}
		return
	}
	metrics.PositionCommits.WithLabelValues("ok").Inc()
}
