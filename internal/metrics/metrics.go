// Package metrics holds the Prometheus collectors shared by the canvas and
// the health monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PositionCommits counts node position writes by result.
	PositionCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexflow_position_commits_total",
			Help: "Node position commits sent to the graph store",
		},
		[]string{"result"},
	)

	// ConnectionCommits counts connection authoring attempts by result.
	ConnectionCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexflow_connection_commits_total",
			Help: "Connection creation attempts by outcome",
		},
		[]string{"result"},
	)

	// HealthChecks counts heartbeat probes by node and result.
	HealthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexflow_health_checks_total",
			Help: "Heartbeat health checks performed",
		},
		[]string{"node_id", "result"},
	)

	// HealthLatency tracks successful probe latency.
	HealthLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hexflow_health_latency_seconds",
			Help:    "Latency of successful heartbeat probes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node_id"},
	)

	// NodeStatus is 1 for the current status of each node and 0 otherwise.
	NodeStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hexflow_node_status",
			Help: "Current health status of a node",
		},
		[]string{"node_id", "status"},
	)
)

func init() {
	prometheus.MustRegister(PositionCommits)
	prometheus.MustRegister(ConnectionCommits)
	prometheus.MustRegister(HealthChecks)
	prometheus.MustRegister(HealthLatency)
	prometheus.MustRegister(NodeStatus)
}
