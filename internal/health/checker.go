package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"hexflow/internal/graph"
)

// Checker probes one node. Implementations must honor ctx.
type Checker interface {
	Check(ctx context.Context, n graph.Node) Sample
}

// HTTPChecker issues a GET to the node endpoint. Any 2xx or 3xx response
// is a success.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{Client: &http.Client{}}
}

func (c *HTTPChecker) Check(ctx context.Context, n graph.Node) Sample {
	start := time.Now()
	s := Sample{At: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.Endpoint, nil)
	if err != nil {
		s.Error = fmt.Sprintf("failed to build request: %v", err)
		return s
	}
	req.Header.Set("User-Agent", "hexflow-heartbeat")

	resp, err := c.Client.Do(req)
	s.Latency = time.Since(start)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		s.Error = fmt.Sprintf("unexpected status %s", resp.Status)
		return s
	}
	s.Success = true
	return s
}
