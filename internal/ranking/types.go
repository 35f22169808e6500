// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
)

// Reason is a machine-readable recommendation reason shown to clients.
type Reason string

// Personalized-surface reasons, in assignment priority order.
const (
	ReasonFromFollowedCreator    Reason = "from_followed_creator"
	ReasonBecauseYouLikedSimilar Reason = "because_you_liked_similar"
	ReasonNewCreatorSpotlight    Reason = "new_creator_spotlight"
	ReasonTrendingInYourArea     Reason = "trending_in_your_area"
	ReasonPopularThisWeek        Reason = "popular_this_week"
)

// Trending-surface reasons, first match wins.
const (
	ReasonViralShares     Reason = "viral_shares"
	ReasonHighCompletion  Reason = "high_completion"
	ReasonRapidEngagement Reason = "rapid_engagement"
	ReasonRisingCreator   Reason = "rising_creator"
)

// Tier classifies a viewer's interaction history depth.
type Tier int

const (
	// TierAnonymous covers unauthenticated viewers and viewers with zero
	// telemetry; they bypass personalization entirely.
	TierAnonymous Tier = iota
	// TierCold viewers have too little history to personalize confidently.
	TierCold
	// TierWarm viewers have partial history.
	TierWarm
	// TierEstablished viewers get the full score-sorted ranking.
	TierEstablished
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierAnonymous:
		return "anonymous"
	case TierCold:
		return "cold"
	case TierWarm:
		return "warm"
	case TierEstablished:
		return "established"
	default:
		return "unknown"
	}
}

// Signal is the derived per-(viewer, video) summary of the telemetry window.
// It is recomputed fresh per request and never cached across requests.
type Signal struct {
	// WatchPct is the maximum watch depth ever reached: 0, 25, 50, 75, 100.
	WatchPct int

	// Liked is true if the viewer liked the video in the window.
	Liked bool

	// Skipped is true if the viewer skipped the video in the window.
	Skipped bool
}

// EventAggregate is one row of the grouped telemetry aggregation:
// event counts per (video, event type), joined with the video's owner.
type EventAggregate struct {
	VideoID   uuid.UUID
	OwnerID   uuid.UUID
	EventType models.EventType
	Count     int
}

// Profile is the aggregated per-viewer signal state for one request.
type Profile struct {
	// Signals maps video ID to the viewer's derived signal.
	Signals map[uuid.UUID]Signal

	// PreferredCreators holds owners of videos the viewer watched to at
	// least 50% depth, plus explicitly followed creators.
	PreferredCreators map[uuid.UUID]struct{}

	// InteractedCreators is the explore/exploit partition set: preferred
	// creators plus followed creators.
	InteractedCreators map[uuid.UUID]struct{}

	// Followed holds explicitly followed creator IDs.
	Followed map[uuid.UUID]struct{}

	// EventCount is the total telemetry events in the lookback window.
	EventCount int

	// Tier is derived from EventCount.
	Tier Tier
}

// ScoredVideo pairs a candidate with its score and reason tag.
type ScoredVideo struct {
	Video  models.Video
	Score  float64
	Reason Reason
}

// Request is a feed page request.
type Request struct {
	// ViewerID is nil for anonymous visitors.
	ViewerID *uuid.UUID

	// Page is 1-based.
	Page int

	// Limit is the page size.
	Limit int

	// ExcludeIDs is the caller-supplied "already seen this session" list.
	ExcludeIDs []uuid.UUID

	// Country and Language are optional trending locale filters.
	Country  string
	Language string

	// RequestID is a unique identifier for tracing.
	RequestID string
}

// ResponseMetadata carries timing and diagnostic information.
type ResponseMetadata struct {
	RequestID      string    `json:"request_id"`
	Surface        string    `json:"surface"`
	Tier           string    `json:"tier"`
	CandidateCount int       `json:"candidate_count"`
	LatencyMS      int64     `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// Response is a ranked feed page plus diagnostics.
type Response struct {
	Items      []models.FeedVideo `json:"items"`
	Pagination models.Pagination  `json:"pagination"`
	Metadata   ResponseMetadata   `json:"metadata"`
}

// ViewerFlags are the per-viewer annotations attached to a page item.
type ViewerFlags struct {
	Liked      bool
	Bookmarked bool
}

// DataProvider is the read interface the engine fans out over. It is
// implemented by the database layer; the engine issues the independent
// reads concurrently and joins before scoring.
type DataProvider interface {
	// CandidateVideos returns the over-provisioned candidate pool for the
	// personalized surface, most-recent-first, honoring the safety filter.
	CandidateVideos(ctx context.Context, filter *SafetyFilter, limit int) ([]models.Video, error)

	// RecentVideos returns the most-recent videos for the anonymous path,
	// honoring the safety filter, with offset pagination.
	RecentVideos(ctx context.Context, filter *SafetyFilter, limit, offset int) ([]models.Video, error)

	// CountRecentVideos returns how many videos pass the safety filter,
	// for anonymous-path pagination metadata.
	CountRecentVideos(ctx context.Context, filter *SafetyFilter) (int, error)

	// TrendingCandidates returns videos created since the given time with
	// at least minViews views, optionally filtered by locale.
	TrendingCandidates(ctx context.Context, since time.Time, minViews int64, country, language string, limit int) ([]models.Video, error)

	// EngagementWindow returns the viewer's grouped telemetry aggregation
	// since the given time, each row joined with the video's owner.
	EngagementWindow(ctx context.Context, viewerID uuid.UUID, since time.Time) ([]EventAggregate, error)

	// FollowedCreators returns creator IDs the viewer explicitly follows.
	FollowedCreators(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error)

	// BlockedUsers returns user IDs blocked in either direction.
	BlockedUsers(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error)

	// Suppressions returns the viewer's suppressed video IDs
	// (not_interested) and suppressed creator IDs (hide_creator, resolved
	// to owners on the read side).
	Suppressions(ctx context.Context, viewerID uuid.UUID) (videoIDs, creatorIDs []uuid.UUID, err error)

	// ViewerVideoFlags returns liked/bookmarked flags for the given page
	// of video IDs.
	ViewerVideoFlags(ctx context.Context, viewerID uuid.UUID, videoIDs []uuid.UUID) (map[uuid.UUID]ViewerFlags, error)

	// CreatorFollowerCounts returns follower counts for the given creators.
	// Missing creators are absent from the map.
	CreatorFollowerCounts(ctx context.Context, creatorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// LiveIndex reports which creators currently have an active broadcast.
type LiveIndex interface {
	LiveCreators(ctx context.Context, creatorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// URLSigner converts stored media references into time-bounded playable
// URLs. Applied to the final page only, immediately before serialization.
type URLSigner interface {
	SignedURL(mediaRef string, now time.Time) (string, error)
}
