// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackAction classifies a viewer's explicit suppression signal.
type FeedbackAction string

const (
	// FeedbackNotInterested hides the specific video from the viewer.
	FeedbackNotInterested FeedbackAction = "not_interested"

	// FeedbackHideCreator is recorded against a video but suppresses all
	// future videos from that video's owner on the read side.
	FeedbackHideCreator FeedbackAction = "hide_creator"

	// FeedbackHideSound suppresses videos using the same sound.
	FeedbackHideSound FeedbackAction = "hide_sound"

	// FeedbackReport flags the video for moderation review.
	FeedbackReport FeedbackAction = "report"
)

// Valid reports whether the action is one of the four known kinds.
func (a FeedbackAction) Valid() bool {
	switch a {
	case FeedbackNotInterested, FeedbackHideCreator, FeedbackHideSound, FeedbackReport:
		return true
	default:
		return false
	}
}

// FeedbackRecord is a per-(user, video, action) suppression record.
// Upserting a duplicate triple refreshes Reason and CreatedAt rather than
// creating a second row.
type FeedbackRecord struct {
	UserID    uuid.UUID      `json:"user_id"`
	VideoID   uuid.UUID      `json:"video_id"`
	Action    FeedbackAction `json:"action"`
	Reason    string         `json:"reason,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
