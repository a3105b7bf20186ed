// Package metrics defines and registers the custom Prometheus metrics of the
// account service. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics register with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// ── Auth gateway ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts calls to the external auth service.
// Labels:
//   - operation: gateway operation (e.g. "register", "refresh")
//   - result: "ok", "rejected" (business failure), "short_circuit" (local
//     precondition failed), "status_error", "transport_error", "decode_error",
//     "missing_cookie"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth service operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthRequestDuration measures round-trip latency to the auth service.
// Label:
//   - operation: gateway operation
var AuthRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_request_duration_seconds",
		Help:      "Duration of auth service HTTP calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Registration ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by final outcome type.
// Label:
//   - outcome: AuthResultType of the returned outcome, or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ReconciliationBacklog is the number of remote identities waiting in the
// reconciliation ledger. Seeded from the ledger at startup, then raised on
// every new NotCreatedLocally.
var ReconciliationBacklog = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconciliation_backlog",
		Help:      "Remote identities created without a matching local account and not yet reconciled.",
	},
)

// ── Tokens ────────────────────────────────────────────────────────────────────

// TokenChecksTotal counts token classifications.
// Label:
//   - status: "absent", "invalid", "expired" or "valid"
var TokenChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_checks_total",
		Help:      "Total number of token validations, by resulting status.",
	},
	[]string{"status"},
)
