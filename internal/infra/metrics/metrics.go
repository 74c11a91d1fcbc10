// Package metrics provides Prometheus metrics for the nearlink registry:
// counters, gauges, and histograms for registrations, discovery queries,
// liveness updates, and eviction sweeps.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Registrations ──────────────────────────────────────────────────────────

// Registrations tracks registration attempts by outcome ("ok" or the
// rejection code).
var Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "registrations_total",
	Help:      "Total registration attempts by outcome.",
}, []string{"result"})

// ─── Discovery ──────────────────────────────────────────────────────────────

// DiscoveryRequests tracks nearby-peer queries.
var DiscoveryRequests = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "discovery_requests_total",
	Help:      "Total nearby-peer discovery queries.",
})

// DiscoveryLatency tracks discovery query duration in seconds.
var DiscoveryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "nearlink",
	Name:      "discovery_latency_seconds",
	Help:      "Nearby-peer query duration in seconds.",
	Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
})

// DiscoveryMatches tracks how many peers matched a query before truncation.
var DiscoveryMatches = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "nearlink",
	Name:      "discovery_matches",
	Help:      "Peers matching a discovery query before the result cap.",
	Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
})

// ─── Liveness ───────────────────────────────────────────────────────────────

// Heartbeats tracks accepted heartbeats.
var Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "heartbeats_total",
	Help:      "Total accepted heartbeats.",
})

// StatusUpdates tracks explicit status changes by new status.
var StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "status_updates_total",
	Help:      "Total explicit status updates by new status.",
}, []string{"status"})

// ─── Registry ───────────────────────────────────────────────────────────────

// PeersRegistered tracks the current registry size.
var PeersRegistered = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "nearlink",
	Name:      "peers_registered",
	Help:      "Number of peers currently in the registry.",
})

// PeersEvicted tracks peers removed for staleness.
var PeersEvicted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "peers_evicted_total",
	Help:      "Total peers evicted after the staleness timeout.",
})

// SweepRuns tracks periodic eviction sweeps.
var SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nearlink",
	Name:      "sweep_runs_total",
	Help:      "Total periodic eviction sweeps.",
})
