// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package database provides the DuckDB-backed projection store.
//
// The store holds read-optimized projections of external systems (the video
// catalog and the social graph), the append-only telemetry event log, and
// explicit viewer feedback. It implements ranking.DataProvider, so the
// ranking engine never touches SQL directly.
//
// All id columns are native UUIDs. Telemetry appends deduplicate on a
// deterministic event fingerprint, making ingestion retries harmless.
package database
