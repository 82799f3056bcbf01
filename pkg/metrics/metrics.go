package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// MembershipChecks counts workspace access-guard evaluations and their
	// outcome (allow|deny|error).
	MembershipChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_membership_checks_total",
			Help: "Total number of workspace membership checks",
		},
		[]string{"result"},
	)

	// OrphanedRecords tracks records whose owning workspace no longer exists,
	// per collection. Updated by the maintenance sweeper.
	OrphanedRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskhive_orphaned_records",
			Help: "Records left behind by workspace deletion",
		},
		[]string{"collection"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskhive_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
