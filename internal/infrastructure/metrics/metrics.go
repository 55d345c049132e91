package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_status_transitions_total",
		Help: "Successful lifecycle transitions, by entity and target status",
	}, []string{"entity", "to"})

	AccrualNotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_accrual_notes_total",
		Help: "Notes visited by the accrual batch, by outcome (accrued, failed)",
	}, []string{"outcome"})

	AccrualRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_accrual_run_duration_seconds",
		Help:    "Wall time of one accrual batch",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	ImportedTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_bank_transactions_imported_total",
		Help: "Bank transaction rows handled on import, by source and outcome",
	}, []string{"source", "outcome"})

	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_reconciliations_total",
		Help: "Match and unmatch operations, by operation and result",
	}, []string{"op", "result"})
)
