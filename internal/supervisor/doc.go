// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package supervisor runs the long-lived services under a suture tree.
//
// The tree has two child layers: pipeline (JetStream consumer) and api
// (HTTP server). A crash in the pipeline layer restarts the consumer
// without taking down feed serving, and vice versa.
package supervisor
