// Package observability defines the Prometheus metrics exported on
// /metrics. Metrics are package-level promauto vars; services and the
// HTTP layer increment them directly.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Order Metrics ──────────────────────────────────────────────────────────

// OrdersCreated counts successfully placed orders.
var OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "orders",
	Name:      "created_total",
	Help:      "Total orders placed.",
})

// OrderStatusChanges counts status transitions by target status.
var OrderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "orders",
	Name:      "status_changes_total",
	Help:      "Total order status transitions by new status.",
}, []string{"status"})

// OrderFailures counts rejected order operations by reason.
var OrderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "orders",
	Name:      "failures_total",
	Help:      "Total rejected order operations by reason.",
}, []string{"reason"})

// ─── Credit Metrics ─────────────────────────────────────────────────────────

// CreditsMoved sums credit movement amounts by ledger entry type.
var CreditsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "credits",
	Name:      "moved_total",
	Help:      "Total credits moved by transaction type.",
}, []string{"type"})

// ─── Account Metrics ────────────────────────────────────────────────────────

// AccountsRegistered counts successful signups.
var AccountsRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "accounts",
	Name:      "registered_total",
	Help:      "Total accounts registered.",
})

// LoginFailures counts rejected logins.
var LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "accounts",
	Name:      "login_failures_total",
	Help:      "Total rejected login attempts.",
})

// ─── Notification Metrics ───────────────────────────────────────────────────

// NotificationsSent counts dispatched notifications by event and outcome.
var NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "platewise",
	Subsystem: "notify",
	Name:      "sent_total",
	Help:      "Total notifications dispatched by event and outcome.",
}, []string{"event", "outcome"})

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequestDuration tracks request latency by method, route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "platewise",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route pattern and status code.",
	Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
}, []string{"method", "route", "status"})
