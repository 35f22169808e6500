// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

// FeedVideo is a ranked video annotated with per-viewer flags and an
// explainable recommendation reason, as returned in a feed page.
type FeedVideo struct {
	Video

	// Score is the final ranking score for this surface.
	Score float64 `json:"score"`

	// RecommendationReason is a machine-readable tag explaining why this
	// video was surfaced (e.g. "from_followed_creator").
	RecommendationReason string `json:"recommendation_reason"`

	// PlaybackURL is the signed, time-bounded playable URL.
	PlaybackURL string `json:"playback_url,omitempty"`

	// Per-viewer flags. All false for anonymous viewers.
	IsLiked      bool `json:"is_liked"`
	IsBookmarked bool `json:"is_bookmarked"`
	IsFollowing  bool `json:"is_following"`
	IsLive       bool `json:"is_live"`
}

// Pagination reports page metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// FeedPage is a single page of ranked videos plus pagination metadata.
type FeedPage struct {
	Items      []FeedVideo `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// NewPagination computes pagination metadata from page, limit, and the total
// number of rankable items.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page*limit < total,
	}
}
