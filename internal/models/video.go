// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is the catalog projection of a single video. Engagement counters
// are maintained by external collaborators; this core only reads them.
type Video struct {
	// ID is the opaque, immutable video identifier.
	ID uuid.UUID `json:"id"`

	// OwnerID is the creator's user ID.
	OwnerID uuid.UUID `json:"owner_id"`

	// Title is the display title.
	Title string `json:"title,omitempty"`

	// MediaRef is the stored media reference. It is opaque to the ranking
	// core and converted to a playable URL by the signer at assembly time.
	MediaRef string `json:"media_ref,omitempty"`

	// TopicTags is the set of topic labels attached at upload time.
	TopicTags []string `json:"topic_tags,omitempty"`

	// CountryCode is the ISO 3166-1 alpha-2 upload locale, if known.
	CountryCode string `json:"country_code,omitempty"`

	// Language is the BCP 47 primary language tag, if known.
	Language string `json:"language,omitempty"`

	// Engagement counters.
	Views            int64 `json:"views"`
	Likes            int64 `json:"likes"`
	CommentsCount    int64 `json:"comments_count"`
	SharesCount      int64 `json:"shares_count"`
	CompletionsCount int64 `json:"completions_count"`

	// CreatedAt is the catalog creation time.
	CreatedAt time.Time `json:"created_at"`
}

// AgeHours returns the video age in hours relative to now.
func (v *Video) AgeHours(now time.Time) float64 {
	return now.Sub(v.CreatedAt).Hours()
}

// Engagement returns the weighted raw engagement used by the personalized
// scorer: likes are worth two views, comments three.
func (v *Video) Engagement() float64 {
	return float64(v.Likes)*2 + float64(v.Views) + float64(v.CommentsCount)*3
}

// ShareRate returns shares per view, zero when the video has no views.
func (v *Video) ShareRate() float64 {
	if v.Views == 0 {
		return 0
	}
	return float64(v.SharesCount) / float64(v.Views)
}

// CompletionRate returns completions per view, zero when the video has no views.
func (v *Video) CompletionRate() float64 {
	if v.Views == 0 {
		return 0
	}
	return float64(v.CompletionsCount) / float64(v.Views)
}
