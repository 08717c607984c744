// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Join codes
	JoinCodeAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "joincode_attempts_total",
			Help: "Total number of candidate join codes generated",
		},
	)

	JoinCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "joincode_collisions_total",
			Help: "Total number of candidate join codes already in use",
		},
	)

	JoinCodeExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "joincode_exhausted_total",
			Help: "Total number of allocations that ran out of attempts",
		},
	)

	// Groups
	GroupOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "group_operations_total",
			Help: "Total number of group create/join operations by result",
		},
		[]string{"operation", "result"}, // operation: "create", "join"; result: "ok" or an error kind
	)

	// Movie lookups
	MovieCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_cache_hits_total",
			Help: "Total number of movie lookups served from cache",
		},
	)

	MovieCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_cache_misses_total",
			Help: "Total number of movie lookups that went to the metadata service",
		},
	)

	MovieCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_cache_entries",
			Help: "Current number of cached movie records",
		},
	)

	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of movie metadata requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	// Swipes
	SwipeDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_decisions_total",
			Help: "Total number of committed swipe decisions by outcome",
		},
		[]string{"outcome"},
	)

	RatingSessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_sessions_finished_total",
			Help: "Total number of rating sessions that reached a terminal status",
		},
		[]string{"status"}, // "completed", "exhausted"
	)

	// RPC
	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_duration_seconds",
			Help:    "Duration of RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure", "code"},
	)
)
