// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package ranking implements the feed ranking engine: the component that
// decides, for a given viewer and page request, which videos to show next,
// in what order, with what diversity guarantees, and why.
//
// # Pipeline
//
// A personalized feed request flows through six stages:
//
//  1. Safety Filter - blocked creators (either direction), suppressed
//     videos/creators, and the caller's exclude list. Applied before
//     scoring; unsafe content never consumes a page slot.
//  2. Signal Aggregator - the viewer's 14-day telemetry window reduced to
//     per-video signals (watch depth, liked, skipped) plus preferred and
//     interacted creator sets, and an interaction tier.
//  3. Scorer - recency, engagement, affinity, and per-viewer signal terms.
//  4. Cold-Start Blender - explore/exploit mixing by tier.
//  5. Diversity Enforcer - per-creator page caps in a single forward pass.
//  6. Assembler - page slicing, per-viewer flags, reason tags, signed
//     playback URLs, pagination metadata.
//
// The trending surface shares stages 1, 5, and 6 and substitutes a
// velocity-normalized scorer with a 7-day window and a minimum-views
// quality gate.
//
// # Design Principles
//
//   - Stateless: no cross-request mutable state; safe for horizontal scaling
//   - Deterministic: equal scores keep retrieval order (stable sorts only)
//   - Fail-closed: any pipeline error fails the whole request; no silent
//     fallback to an unfiltered feed
//   - Concurrent reads: independent store reads fan out in parallel and
//     join before scoring
//
// The DataProvider interface decouples the engine from the database
// package without creating circular imports.
package ranking
