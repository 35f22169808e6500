// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Command server runs the ReelRank feed ranking service: the HTTP API, the
// DuckDB store, the live-session index, and (when NATS is enabled) the
// JetStream telemetry pipeline, all under one supervisor tree.
package main
