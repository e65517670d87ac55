// Package metrics holds the process wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fmcg_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fmcg_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fmcg_ledger_mutations_total",
		Help: "Committed ledger changes by ledger and action type.",
	}, []string{"ledger", "action"})

	PoolMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fmcg_offer_pool_units_total",
		Help: "Units moved through offer pools by action.",
	}, []string{"action"})

	PINRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fmcg_admin_pin_rejections_total",
		Help: "Requests refused because the admin PIN was missing or wrong.",
	})

	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fmcg_version_conflicts_total",
		Help: "Optimistic concurrency conflicts seen before retry.",
	})

	OverlapCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fmcg_overlap_cache_lookups_total",
		Help: "Overlap cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)
