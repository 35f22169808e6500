// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package metrics exposes Prometheus instrumentation for the ranking
// service: HTTP surface, ranking pipeline, telemetry ingestion, and the
// event pipeline. Metrics are registered via promauto at package init and
// served on /metrics.
package metrics
