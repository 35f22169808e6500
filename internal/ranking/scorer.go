// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
)

// Scorer assigns personalized scores. All weights come from configuration;
// the skip penalty must strictly dominate the single-like boost (enforced
// by config validation) so previously skipped content stays suppressed.
type Scorer struct {
	cfg *config.RankingConfig
}

// NewScorer creates a personalized scorer with the given weights.
func NewScorer(cfg *config.RankingConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the score and recommendation reason for one candidate.
func (s *Scorer) Score(v *models.Video, p *Profile, now time.Time) (float64, Reason) {
	cfg := s.cfg
	ageHours := v.AgeHours(now)

	// Linear recency decay from RecencyBase to zero over RecencyDecayDays.
	recencyBoost := cfg.RecencyBase * (1 - ageHours/(cfg.RecencyDecayDays*24))
	if recencyBoost < 0 {
		recencyBoost = 0
	}

	engagement := v.Engagement()
	normalizedEngagement := math.Log10(engagement+1) * cfg.EngagementWeight

	var creatorBoost, followBoost, signalBoost, newCreatorBoost, explorationBoost float64

	if _, ok := p.PreferredCreators[v.OwnerID]; ok {
		creatorBoost = cfg.CreatorBoost
	}
	followed := p.IsFollowing(v.OwnerID)
	if followed {
		followBoost = cfg.FollowBoost
	}

	sig, hasSignal := p.Signals[v.ID]
	if hasSignal {
		if sig.Liked {
			signalBoost += cfg.LikeBoost
		}
		if sig.Skipped {
			signalBoost -= cfg.SkipPenalty
		}
	}

	if v.Views < cfg.NewCreatorViewCeiling {
		newCreatorBoost = cfg.NewCreatorBoost
	}
	if !p.IsFamiliar(v.OwnerID) {
		explorationBoost = cfg.ExplorationBoost
	}

	score := recencyBoost + normalizedEngagement + creatorBoost + followBoost +
		signalBoost + newCreatorBoost + explorationBoost

	return score, s.reason(followed, creatorBoost, newCreatorBoost, engagement, ageHours)
}

// reason picks the recommendation reason tag, in priority order.
func (s *Scorer) reason(followed bool, creatorBoost, newCreatorBoost, engagement, ageHours float64) Reason {
	switch {
	case followed:
		return ReasonFromFollowedCreator
	case creatorBoost > 0:
		return ReasonBecauseYouLikedSimilar
	case newCreatorBoost > 0:
		return ReasonNewCreatorSpotlight
	case engagement > s.cfg.TrendingAreaEngagement && ageHours < s.cfg.TrendingAreaMaxAgeHours:
		return ReasonTrendingInYourArea
	default:
		return ReasonPopularThisWeek
	}
}

// ScoreAll scores every admissible candidate and returns them sorted by
// score descending. The sort is stable: candidates arrive most-recent-first
// and equal scores keep that order, keeping pagination deterministic within
// a request.
func (s *Scorer) ScoreAll(videos []models.Video, filter *SafetyFilter, p *Profile, now time.Time) []ScoredVideo {
	scored := make([]ScoredVideo, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		if !filter.Admissible(v) {
			continue
		}
		score, reason := s.Score(v, p, now)
		scored = append(scored, ScoredVideo{Video: videos[i], Score: score, Reason: reason})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
