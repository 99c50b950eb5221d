// Package metrics defines and registers the custom Prometheus metrics of the
// orderdesk API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init (promauto),
// so they are exposed by the /metrics handler alongside the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersCreatedTotal counts users successfully created.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// UsersDeletedTotal counts users successfully deleted.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of users deleted.",
	},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders successfully created.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrdersDeletedTotal counts orders successfully deleted.
var OrdersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_deleted_total",
		Help:      "Total number of orders deleted.",
	},
)

// LastTicketIssued holds the most recent ticket handed out by this process.
var LastTicketIssued = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_last_ticket",
		Help:      "Most recent order ticket allocated by this instance.",
	},
)

// ── Integrity metrics ─────────────────────────────────────────────────────────

// ConflictsTotal counts requests rejected by a uniqueness or reference rule.
// Labels:
//   - resource: "user" or "order"
//   - reason: "duplicate_username", "duplicate_title", "has_orders", "replayed_request"
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_total",
		Help:      "Total number of writes rejected by uniqueness or referential rules.",
	},
	[]string{"resource", "reason"},
)
