// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package signer issues expiring signed playback URLs.
//
// A signed URL binds the media path and an expiry timestamp under a keyed
// BLAKE2b MAC, so the CDN edge can verify playback grants without a
// round trip to the ranking service.
package signer
