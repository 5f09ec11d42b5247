// Package metrics defines and registers all custom Prometheus metrics for the
// QuickFund API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quickfund"

// ── Ledger metrics ────────────────────────────────────────────────────────────

// DonationsTotal counts committed donations.
var DonationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_total",
		Help:      "Total number of donations committed.",
	},
)

// DonationAmountTotal sums the amounts of committed donations.
var DonationAmountTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_amount_total",
		Help:      "Sum of all committed donation amounts.",
	},
)

// DonationReplaysTotal counts donations skipped because their idempotency key
// had already been processed.
var DonationReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_replays_total",
		Help:      "Total number of donation requests short-circuited by an idempotency key.",
	},
)

// RefundsTotal counts committed refunds.
var RefundsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Total number of refunds committed.",
	},
)

// RefundAmountTotal sums the amounts of committed refunds.
var RefundAmountTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refund_amount_total",
		Help:      "Sum of all committed refund amounts.",
	},
)

// LedgerFailuresTotal counts rejected or rolled-back ledger operations.
// Labels:
//   - operation: "donate" or "refund"
//   - reason: "validation", "not_found", "exceeds_donation", "processing"
var LedgerFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_failures_total",
		Help:      "Total number of ledger operations that did not commit.",
	},
	[]string{"operation", "reason"},
)

// LedgerDuration measures the time spent serving a ledger request.
// Label:
//   - operation: "donate" or "refund"
var LedgerDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_duration_seconds",
		Help:      "Duration of donation and refund processing.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of entries waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of ledger entries pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEntriesDroppedTotal counts entries discarded because a worker channel was full.
var AuditEntriesDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_dropped_total",
		Help:      "Total number of ledger entries dropped before reaching the audit store.",
	},
)

// AuditWriteErrorsTotal counts failed writes to the audit store.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of ledger entries the audit store rejected.",
	},
)

// ── Registry metrics ──────────────────────────────────────────────────────────

// ProjectsCreatedTotal counts newly created projects.
var ProjectsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_created_total",
		Help:      "Total number of projects created.",
	},
)

// RatingsSubmittedTotal counts manager ratings.
var RatingsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_submitted_total",
		Help:      "Total number of manager ratings submitted.",
	},
)
