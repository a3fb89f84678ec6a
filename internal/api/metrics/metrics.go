// Package metrics defines and registers all custom Prometheus metrics for the
// catalog console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// (promauto) and exposed by the console server on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Request pipeline metrics ──────────────────────────────────────────────────

// BackendRequestsTotal counts backend attempts, retries included.
// Labels:
//   - method: HTTP method (GET, POST, …)
//   - status: response status code, or "network_error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of HTTP attempts made against the backend.",
	},
	[]string{"method", "status"},
)

// BackendRetriesTotal counts retries scheduled after a transient response.
// Label:
//   - status: the status that triggered the retry (429 or 5xx)
var BackendRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_retries_total",
		Help:      "Total number of retries scheduled after 429/5xx responses.",
	},
	[]string{"status"},
)

// BackendCallDuration measures a whole pipeline call, backoff waits included.
// Label:
//   - outcome: "ok", "api_error" or "network_error"
var BackendCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_call_duration_seconds",
		Help:      "Duration of request pipeline calls including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ForcedLogoutsTotal counts sessions torn down because the backend answered 401.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of sessions cleared after a 401 response.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsPublishedTotal counts toasts published on the bus.
// Label:
//   - severity: info, success, warning or error
var NotificationsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Total number of notifications published, by severity.",
	},
	[]string{"severity"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardRedirectsTotal counts navigations redirected by a route guard.
// Label:
//   - gate: "auth", "tenant" or "role"
var GuardRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_redirects_total",
		Help:      "Total number of navigations redirected by a route guard.",
	},
	[]string{"gate"},
)
