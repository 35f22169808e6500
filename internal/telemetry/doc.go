// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package telemetry implements the interaction event pipeline.
//
// Ingestion is best-effort by contract: the batch endpoint truncates
// oversized batches, silently drops unknown event types, rate-limits noisy
// sessions, and still acknowledges the caller. Feed delivery must never
// stall because analytics are degraded.
//
// Two delivery modes share the same store append:
//
//   - async (NATS enabled): events publish to JetStream with the
//     deterministic fingerprint as Nats-Msg-Id, and a Watermill consumer
//     appends them to DuckDB. The broker's duplicate window plus the store's
//     fingerprint primary key make redelivery harmless.
//   - direct (NATS disabled): events append straight to the store behind a
//     circuit breaker.
//
// The same consumer router also maintains the catalog and social graph
// projections from their respective topics.
package telemetry
