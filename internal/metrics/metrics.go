// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation path

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy", "status"}, // strategy: cold_start|bandit, status: ok|no_candidates|error
	)

	RecommendStale = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_stale_served_total",
			Help: "Recommendations served from a catalog snapshot older than the staleness tolerance",
		},
	)

	// Feedback / ingestion path

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Ingested feedback events by action and outcome",
		},
		[]string{"action", "status"}, // status: applied|duplicate|invalid
	)

	ArmStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arm_store_operations_total",
			Help: "Arm statistics store operations",
		},
		[]string{"backend", "operation"}, // operation: get|update|snapshot
	)

	ArmStoreConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arm_store_txn_conflicts_total",
			Help: "Transaction conflicts retried by the durable arm store",
		},
	)

	// Catalog

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_total",
			Help: "Catalog refresh attempts by result",
		},
		[]string{"result"}, // ok|error
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Active products in the current catalog snapshot",
		},
	)

	CatalogStaleness = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_staleness_seconds",
			Help: "Age of the current catalog snapshot in seconds",
		},
	)

	// Backend client

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Requests to the upstream backend by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)

	BackendBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backend_breaker_open",
			Help: "1 when the backend circuit breaker is open, 0 otherwise",
		},
	)

	// HTTP surface

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP API requests",
		},
		[]string{"method", "route", "code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveRecommend records one recommendation request.
func ObserveRecommend(strategy, status string, d time.Duration) {
	RecommendDuration.WithLabelValues(strategy, status).Observe(d.Seconds())
}

// ObserveAPIRequest records one HTTP request.
func ObserveAPIRequest(method, route string, code int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveBackendRequest records one upstream backend call.
func ObserveBackendRequest(endpoint string, code int) {
	BackendRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}
