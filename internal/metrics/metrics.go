// Package metrics registers the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gestion_http_requests_total",
		Help: "API requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes API request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gestion_http_request_duration_seconds",
		Help:    "API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ContributionsRecorded counts contribution records written through the ledger.
	ContributionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_contributions_recorded_total",
		Help: "Contribution records written through the ledger.",
	})

	// SettlementsExecuted counts settlement payments applied to the ledger.
	SettlementsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_settlements_executed_total",
		Help: "Settlement payments executed.",
	})

	// PendingTransactionsCreated counts payouts parked for manual reconciliation.
	PendingTransactionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_pending_transactions_created_total",
		Help: "Settlement payouts parked as pending external transactions.",
	})

	// PaymentsSuggested counts advisory payments emitted by the matcher.
	PaymentsSuggested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_payments_suggested_total",
		Help: "Advisory payments emitted by the settlement matcher.",
	})

	// MembersLeft counts completed leave flows by exit path.
	MembersLeft = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gestion_members_left_total",
		Help: "Completed leave flows by exit path.",
	}, []string{"path"})
)
