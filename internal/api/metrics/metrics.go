// Package metrics defines and registers all custom Prometheus metrics for the
// investor admin service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "anka"

// ── Client write metrics ──────────────────────────────────────────────────────

// ClientWritesTotal counts client submissions that reached the directory.
// Labels:
//   - action: "create" or "update"
//   - result: "ok", "invalid", "duplicate" or "error"
var ClientWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_writes_total",
		Help:      "Total number of client create/update submissions, by outcome.",
	},
	[]string{"action", "result"},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// DirectoryCacheTotal counts cache lookups for directory reads.
// Labels:
//   - key: cache key family ("clients", "assets", "client-assets")
//   - result: "hit" or "miss"
var DirectoryCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_cache_total",
		Help:      "Directory cache lookups, labelled by key family and result.",
	},
	[]string{"key", "result"},
)

// BackendRequestDuration measures calls to the REST backend.
// Labels:
//   - op: backend operation ("list_clients", "create_client", ...)
//   - code: HTTP status code, or "transport" when no response was received
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of outbound REST backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "code"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of changes waiting in each dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of allocation changes pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts changes discarded because a worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Allocation changes dropped because the dispatcher queue was full.",
	},
)

// AuditRecordedTotal counts allocation changes handled by the audit service.
// Label:
//   - result: "ok" or "error"
var AuditRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_recorded_total",
		Help:      "Allocation changes processed by the audit service, by result.",
	},
	[]string{"result"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures served requests.
// Labels:
//   - method: HTTP method
//   - route: matched route template (e.g. "/clients/:id"), "unmatched" otherwise
//   - code: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of served HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)
