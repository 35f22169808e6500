// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

// JetStream topics. All live in one stream so a single consumer router
// maintains ordering across the projections it feeds.
const (
	// TopicEvents carries viewer interaction events.
	TopicEvents = "reelrank.telemetry.events"

	// TopicCatalog carries video catalog projection updates.
	TopicCatalog = "reelrank.catalog.videos"

	// TopicFollows carries follow-edge projection updates.
	TopicFollows = "reelrank.social.follows"

	// TopicBlocks carries block-edge projection updates.
	TopicBlocks = "reelrank.social.blocks"

	// StreamName is the JetStream stream holding all of the above.
	StreamName = "REELRANK"

	// StreamSubjects is the wildcard the stream binds.
	StreamSubjects = "reelrank.>"
)
