// Package telemetry exposes prometheus collectors for the thread engine
// and the storage service. Everything registers on the default registry
// and is served at /metrics via promhttp.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts optimistic mutations applied locally, by op
	// (create/edit/delete) and outcome (confirmed/rolled_back).
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagethread_mutations_total",
		Help: "Optimistic mutations applied by the gateway, by op and outcome.",
	}, []string{"op", "outcome"})

	// ConflictsTotal counts mutations rejected by the per-comment
	// in-flight guard.
	ConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagethread_mutation_conflicts_total",
		Help: "Mutations rejected because one was already in flight for the comment.",
	})

	// ThreadLoadsTotal counts thread fetches by outcome (ok/error).
	ThreadLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagethread_thread_loads_total",
		Help: "Thread load attempts by outcome.",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts storage-service requests by method and code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagethread_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})

	// HTTPRequestSeconds observes storage-service request latency.
	HTTPRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagethread_http_request_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// CommentsPurgedTotal counts tombstones removed by retention runs.
	CommentsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagethread_comments_purged_total",
		Help: "Soft-deleted comments purged by the retention runner.",
	})
)
