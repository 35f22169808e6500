// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
)

// TrendingScorer ranks the public trending surface: raw engagement
// normalized by audience size, decayed by age so the board measures
// velocity rather than accumulation.
type TrendingScorer struct {
	cfg *config.TrendingConfig
}

// NewTrendingScorer creates a trending scorer with the given weights.
func NewTrendingScorer(cfg *config.TrendingConfig) *TrendingScorer {
	return &TrendingScorer{cfg: cfg}
}

// EngagementScore computes the raw engagement term, before audience
// normalization and time decay.
func (s *TrendingScorer) EngagementScore(v *models.Video) float64 {
	return float64(v.Likes)*2 + float64(v.Views) + float64(v.CommentsCount)*3 +
		v.ShareRate()*s.cfg.ShareRateWeight + v.CompletionRate()*s.cfg.CompletionRateWeight
}

// Score computes the trending score for one candidate given its creator's
// follower count.
func (s *TrendingScorer) Score(v *models.Video, followerCount int64, now time.Time) float64 {
	// Per-follower normalization gives small creators a fair shot; +1
	// keeps zero-follower creators defined.
	normalized := s.EngagementScore(v) / math.Sqrt(float64(followerCount)+1)

	ageHours := v.AgeHours(now)
	return normalized / math.Pow(ageHours+2, s.cfg.DecayExponent)
}

// Reason picks the trending reason tag, first match wins. The rapid gate
// reads the raw engagement score: normalization and decay would make it
// unreachable for creators with any audience.
func (s *TrendingScorer) Reason(v *models.Video, followerCount int64, engagementScore, trendingScore float64, now time.Time) Reason {
	cfg := s.cfg
	ageHours := v.AgeHours(now)
	switch {
	case v.ShareRate() > cfg.ViralShareRate:
		return ReasonViralShares
	case v.CompletionRate() > cfg.HighCompletionRate:
		return ReasonHighCompletion
	case ageHours < cfg.RapidEngagementHours && engagementScore > cfg.RapidEngagementScore:
		return ReasonRapidEngagement
	case followerCount < cfg.RisingCreatorFollowers && trendingScore > cfg.RisingCreatorScore:
		return ReasonRisingCreator
	default:
		return ReasonPopularThisWeek
	}
}

// ScoreAll scores every admissible candidate and returns them sorted by
// trending score descending, stable on retrieval order. Candidates below
// the minimum-views gate never reach this function; the provider filters
// them at retrieval.
func (s *TrendingScorer) ScoreAll(videos []models.Video, filter *SafetyFilter, followers map[uuid.UUID]int64, now time.Time) []ScoredVideo {
	scored := make([]ScoredVideo, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		if !filter.Admissible(v) {
			continue
		}
		fc := followers[v.OwnerID]
		eng := s.EngagementScore(v)
		score := s.Score(v, fc, now)
		scored = append(scored, ScoredVideo{
			Video:  videos[i],
			Score:  score,
			Reason: s.Reason(v, fc, eng, score, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
