// Package health runs the heartbeat: it probes node endpoints on a timer,
// keeps a bounded history of probes per node and derives node status from
// the latest probe.
package health

import (
	"time"

	"hexflow/internal/graph"
)

// Sample is one recorded probe.
type Sample struct {
	At      time.Time     `json:"at"`
	Success bool          `json:"success"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Settings is the heartbeat's retry and timing policy.
type Settings struct {
	Interval    time.Duration
	MaxAttempts int
	Backoff     Backoff
	Timeout     time.Duration
	WarnLatency time.Duration
	Concurrency int
}

func DefaultSettings() Settings {
	return Settings{
		Interval:    30 * time.Second,
		MaxAttempts: 3,
		Backoff:     DefaultBackoff(),
		Timeout:     2 * time.Second,
		WarnLatency: 500 * time.Millisecond,
		Concurrency: 4,
	}
}

// Derive maps a probe to a node status. Slow successes are a warning.
func Derive(s Sample, warn time.Duration) graph.Status {
	switch {
	case !s.Success:
		return graph.StatusInactive
	case warn > 0 && s.Latency > warn:
		return graph.StatusWarning
	}
	return graph.StatusActive
}
