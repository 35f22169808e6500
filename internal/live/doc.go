// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package live tracks which creators currently have an active broadcast.
//
// Marks are stored in Badger with a TTL, so a crashed broadcaster stops
// showing as live once its heartbeat lapses. The index is advisory: feed
// assembly degrades to no badges when it is unavailable.
package live
