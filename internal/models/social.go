// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowEdge is a directed follow relationship, unique per ordered pair.
type FollowEdge struct {
	FollowerID  uuid.UUID `json:"follower_id"`
	FollowingID uuid.UUID `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlockEdge is a directed block relationship, unique per ordered pair.
// Its safety effect is symmetric: either direction hides content.
type BlockEdge struct {
	BlockerID uuid.UUID `json:"blocker_id"`
	BlockedID uuid.UUID `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
