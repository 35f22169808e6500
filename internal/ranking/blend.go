// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"sort"

	"github.com/reelkit/reelrank/internal/config"
)

// Blender mixes exploration candidates into the ranked list for viewers
// with thin interaction history. Established viewers pass through untouched.
type Blender struct {
	cfg *config.RankingConfig
}

// NewBlender creates a cold-start blender with the configured ratios.
func NewBlender(cfg *config.RankingConfig) *Blender {
	return &Blender{cfg: cfg}
}

// Blend applies the tier's explore/exploit ratio over successive windows of
// pageSize, so every page of the result carries the guaranteed exploration
// share, not just the first. Within each window items stay score-sorted.
//
// Explore items are videos from creators the viewer has never interacted
// with; their reason is rewritten to new_creator_spotlight so clients can
// label the discovery slot. Exploit items for cold viewers come only from
// familiar creators; warm viewers also accept unfamiliar videos with organic
// engagement.
func (b *Blender) Blend(ranked []ScoredVideo, p *Profile, pageSize int) []ScoredVideo {
	ratio := b.ratioFor(p.Tier)
	if ratio <= 0 || len(ranked) == 0 || pageSize <= 0 {
		return ranked
	}

	explore := make([]ScoredVideo, 0, len(ranked))
	exploit := make([]ScoredVideo, 0, len(ranked))
	for _, sv := range ranked {
		if !p.IsFamiliar(sv.Video.OwnerID) {
			sv.Reason = ReasonNewCreatorSpotlight
			explore = append(explore, sv)
			continue
		}
		exploit = append(exploit, sv)
	}
	// Warm viewers additionally exploit unfamiliar videos with organic
	// traction, so a thin familiar pool does not starve the feed.
	if p.Tier == TierWarm {
		exploit = exploit[:0]
		explore = explore[:0]
		for _, sv := range ranked {
			if p.IsFamiliar(sv.Video.OwnerID) || sv.Video.Engagement() > 0 {
				exploit = append(exploit, sv)
				continue
			}
			sv.Reason = ReasonNewCreatorSpotlight
			explore = append(explore, sv)
		}
	}

	quota := int(float64(pageSize) * ratio)
	out := make([]ScoredVideo, 0, len(ranked))
	ei, xi := 0, 0
	for ei < len(explore) || xi < len(exploit) {
		window := make([]ScoredVideo, 0, pageSize)
		for len(window) < quota && ei < len(explore) {
			window = append(window, explore[ei])
			ei++
		}
		for len(window) < pageSize && xi < len(exploit) {
			window = append(window, exploit[xi])
			xi++
		}
		// Backfill from whichever pool still has items.
		for len(window) < pageSize && ei < len(explore) {
			window = append(window, explore[ei])
			ei++
		}
		sort.SliceStable(window, func(i, j int) bool {
			return window[i].Score > window[j].Score
		})
		out = append(out, window...)
	}
	return out
}

func (b *Blender) ratioFor(tier Tier) float64 {
	switch tier {
	case TierCold:
		return b.cfg.ColdExploreRatio
	case TierWarm:
		return b.cfg.WarmExploreRatio
	default:
		return 0
	}
}
