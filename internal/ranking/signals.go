// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
)

// BuildProfile reduces the viewer's grouped telemetry window and follow
// edges into per-video signals, creator preference sets, and an
// interaction tier. The aggregation is consumed exactly once here; nothing
// is recomputed per candidate.
func BuildProfile(aggregates []EventAggregate, followed []uuid.UUID, cfg *config.RankingConfig) *Profile {
	p := &Profile{
		Signals:            make(map[uuid.UUID]Signal),
		PreferredCreators:  make(map[uuid.UUID]struct{}),
		InteractedCreators: make(map[uuid.UUID]struct{}),
		Followed:           make(map[uuid.UUID]struct{}, len(followed)),
	}

	for _, agg := range aggregates {
		p.EventCount += agg.Count

		sig := p.Signals[agg.VideoID]
		if pct := agg.EventType.WatchPct(); pct > sig.WatchPct {
			sig.WatchPct = pct
		}
		switch agg.EventType {
		case models.EventLike:
			sig.Liked = true
		case models.EventSkip:
			sig.Skipped = true
		}
		p.Signals[agg.VideoID] = sig

		// Owners of videos watched to at least half depth are preferred.
		if sig.WatchPct >= 50 {
			p.PreferredCreators[agg.OwnerID] = struct{}{}
		}
	}

	for _, id := range followed {
		p.Followed[id] = struct{}{}
		p.PreferredCreators[id] = struct{}{}
	}

	for id := range p.PreferredCreators {
		p.InteractedCreators[id] = struct{}{}
	}
	for id := range p.Followed {
		p.InteractedCreators[id] = struct{}{}
	}

	p.Tier = tierFor(p.EventCount, cfg)
	return p
}

// tierFor classifies a viewer by total events in the lookback window.
func tierFor(eventCount int, cfg *config.RankingConfig) Tier {
	switch {
	case eventCount == 0:
		return TierAnonymous
	case eventCount < cfg.ColdEventThreshold:
		return TierCold
	case eventCount < cfg.EstablishedEventThreshold:
		return TierWarm
	default:
		return TierEstablished
	}
}

// IsFamiliar reports whether the viewer has interacted with the creator.
func (p *Profile) IsFamiliar(creatorID uuid.UUID) bool {
	_, ok := p.InteractedCreators[creatorID]
	return ok
}

// IsFollowing reports whether the viewer explicitly follows the creator.
func (p *Profile) IsFollowing(creatorID uuid.UUID) bool {
	_, ok := p.Followed[creatorID]
	return ok
}
