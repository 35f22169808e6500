// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface.

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_http_active_requests",
			Help: "In-flight HTTP requests",
		},
	)

	// Ranking pipeline.

	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_feed_requests_total",
			Help: "Feed page requests by surface and viewer tier",
		},
		[]string{"surface", "tier"},
	)

	FeedLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_feed_latency_seconds",
			Help:    "End-to-end ranking latency by surface",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"surface"},
	)

	FeedCandidatePoolSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_feed_candidate_pool_size",
			Help:    "Candidate pool size before scoring",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"surface"},
	)

	// Telemetry ingestion.

	TelemetryEventsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrank_telemetry_events_ingested_total",
			Help: "Telemetry events accepted into the pipeline",
		},
	)

	TelemetryEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_telemetry_events_dropped_total",
			Help: "Telemetry events dropped, by cause",
		},
		[]string{"cause"},
	)

	// Event pipeline.

	PipelinePublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_pipeline_published_total",
			Help: "Messages published to JetStream, by topic",
		},
		[]string{"topic"},
	)

	PipelineConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_pipeline_consumed_total",
			Help: "Messages consumed from JetStream, by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	PipelineAppendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrank_pipeline_append_duration_seconds",
			Help:    "Store append latency for consumed batches",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Live session index.

	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_live_sessions",
			Help: "Creators currently marked live",
		},
	)
)

// RecordFeedRequest records one ranking request.
func RecordFeedRequest(surface, tier string, duration time.Duration, poolSize int) {
	FeedRequests.WithLabelValues(surface, tier).Inc()
	FeedLatency.WithLabelValues(surface).Observe(duration.Seconds())
	FeedCandidatePoolSize.WithLabelValues(surface).Observe(float64(poolSize))
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
