package network

import "github.com/prometheus/client_golang/prometheus"

// Metrics used in monitoring service.
var (
	droppedTasks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of work items dropped on dispatcher backpressure",
			Name:      "sync_dropped_tasks",
			Namespace: "carbon",
		},
	)
	peersConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of peers tracked by the sync protocol",
			Name:      "sync_peers_connected",
			Namespace: "carbon",
		},
	)
	pendingCompacts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of compact blocks awaiting transaction fill-in",
			Name:      "relay_pending_compact_blocks",
			Namespace: "carbon",
		},
	)
)

func init() {
	prometheus.MustRegister(
		droppedTasks,
		peersConnected,
		pendingCompacts,
	)
}
