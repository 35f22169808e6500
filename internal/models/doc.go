// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package models defines the shared domain types for ReelRank: the video
// catalog projection, social graph edges, feedback records, telemetry
// events, and the assembled feed page returned by the API.
//
// These types are plain data carriers. Ranking behavior lives in the
// ranking package; persistence lives in the database package.
package models
