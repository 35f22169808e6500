// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
)

// Engine runs the ranking pipeline for both feed surfaces. It is stateless:
// every request reads fresh state from the provider, so instances can be
// replicated freely.
type Engine struct {
	dp       DataProvider
	live     LiveIndex
	signer   URLSigner
	rankCfg  *config.RankingConfig
	trendCfg *config.TrendingConfig
	apiCfg   *config.APIConfig

	scorer   *Scorer
	blender  *Blender
	trending *TrendingScorer

	logger zerolog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewEngine creates a ranking engine. The live index and signer are
// required; pass them even when broadcasting is unused so the assembler
// stays uniform.
func NewEngine(dp DataProvider, live LiveIndex, signer URLSigner, cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		dp:       dp,
		live:     live,
		signer:   signer,
		rankCfg:  &cfg.Ranking,
		trendCfg: &cfg.Trending,
		apiCfg:   &cfg.API,
		scorer:   NewScorer(&cfg.Ranking),
		blender:  NewBlender(&cfg.Ranking),
		trending: NewTrendingScorer(&cfg.Trending),
		logger:   logger.With().Str("component", "ranking").Logger(),
		now:      time.Now,
	}
}

// Personalized returns one page of the personalized feed. Anonymous viewers
// and identified viewers with zero recent telemetry fall back to the
// reverse-chronological feed; identified viewers keep their full safety
// filter on the fallback path.
func (e *Engine) Personalized(ctx context.Context, req Request) (*Response, error) {
	start := e.now()

	if req.ViewerID == nil {
		filter := NewSafetyFilter(nil, nil, nil, req.ExcludeIDs, e.apiCfg.MaxExcludeIDs)
		return e.anonymousPage(ctx, req, nil, nil, filter, start)
	}
	viewerID := *req.ViewerID

	filter, profile, err := e.viewerState(ctx, viewerID, req.ExcludeIDs)
	if err != nil {
		return nil, err
	}

	if profile.EventCount == 0 {
		return e.anonymousPage(ctx, req, req.ViewerID, profile, filter, start)
	}

	pool, err := e.dp.CandidateVideos(ctx, filter, e.rankCfg.PoolMultiplier*req.Limit)
	if err != nil {
		return nil, fmt.Errorf("candidate retrieval: %w", err)
	}

	ranked := e.scorer.ScoreAll(pool, filter, profile, start)
	ranked = e.blender.Blend(ranked, profile, req.Limit)
	ranked = EnforceCreatorCap(ranked, e.rankCfg.CreatorCap)

	total := len(ranked)
	page := slicePage(ranked, req.Page, req.Limit)

	items, err := e.assemble(ctx, req.ViewerID, profile, page, start)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("request_id", req.RequestID).
		Str("tier", profile.Tier.String()).
		Int("pool", len(pool)).
		Int("ranked", total).
		Msg("personalized page assembled")

	return &Response{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			Surface:        "personalized",
			Tier:           profile.Tier.String(),
			CandidateCount: len(pool),
			LatencyMS:      e.now().Sub(start).Milliseconds(),
			Timestamp:      start.UTC(),
		},
	}, nil
}

// Trending returns one page of the public trending feed. The quality gate
// (minimum views) and the recency window are pushed into retrieval; scoring
// normalizes by audience size and decays by age.
func (e *Engine) Trending(ctx context.Context, req Request) (*Response, error) {
	start := e.now()

	var (
		filter  *SafetyFilter
		profile *Profile
	)
	if req.ViewerID != nil {
		f, p, err := e.viewerState(ctx, *req.ViewerID, req.ExcludeIDs)
		if err != nil {
			return nil, err
		}
		filter, profile = f, p
	} else {
		filter = NewSafetyFilter(nil, nil, nil, req.ExcludeIDs, e.apiCfg.MaxExcludeIDs)
	}

	since := start.AddDate(0, 0, -e.trendCfg.WindowDays)
	pool, err := e.dp.TrendingCandidates(ctx, since, e.trendCfg.MinViews, req.Country, req.Language,
		e.rankCfg.PoolMultiplier*req.Limit)
	if err != nil {
		return nil, fmt.Errorf("trending retrieval: %w", err)
	}

	followers, err := e.dp.CreatorFollowerCounts(ctx, ownerIDs(pool))
	if err != nil {
		return nil, fmt.Errorf("follower counts: %w", err)
	}

	ranked := e.trending.ScoreAll(pool, filter, followers, start)
	ranked = EnforceCreatorCap(ranked, e.trendCfg.CreatorCap)

	total := len(ranked)
	page := slicePage(ranked, req.Page, req.Limit)

	items, err := e.assemble(ctx, req.ViewerID, profile, page, start)
	if err != nil {
		return nil, err
	}

	return &Response{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			Surface:        "trending",
			Tier:           TierAnonymous.String(),
			CandidateCount: len(pool),
			LatencyMS:      e.now().Sub(start).Milliseconds(),
			Timestamp:      start.UTC(),
		},
	}, nil
}

// viewerState fans out the four independent per-viewer reads and joins them
// into the safety filter and signal profile.
func (e *Engine) viewerState(ctx context.Context, viewerID uuid.UUID, excludeIDs []uuid.UUID) (*SafetyFilter, *Profile, error) {
	var (
		blocked        []uuid.UUID
		hiddenVideos   []uuid.UUID
		hiddenCreators []uuid.UUID
		followed       []uuid.UUID
		aggregates     []EventAggregate
	)

	since := e.now().AddDate(0, 0, -e.rankCfg.LookbackDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocked, err = e.dp.BlockedUsers(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("blocked users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		hiddenVideos, hiddenCreators, err = e.dp.Suppressions(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("suppressions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		followed, err = e.dp.FollowedCreators(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("followed creators: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		aggregates, err = e.dp.EngagementWindow(gctx, viewerID, since)
		if err != nil {
			return fmt.Errorf("engagement window: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	filter := NewSafetyFilter(blocked, hiddenVideos, hiddenCreators, excludeIDs, e.apiCfg.MaxExcludeIDs)
	profile := BuildProfile(aggregates, followed, e.rankCfg)
	return filter, profile, nil
}

// anonymousPage serves the reverse-chronological fallback. viewerID is nil
// for true anonymous traffic and non-nil for identified viewers with no
// recent telemetry; the latter still get per-viewer flags on page items.
func (e *Engine) anonymousPage(ctx context.Context, req Request, viewerID *uuid.UUID, profile *Profile, filter *SafetyFilter, start time.Time) (*Response, error) {
	offset := (req.Page - 1) * req.Limit

	var (
		videos []models.Video
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		videos, err = e.dp.RecentVideos(gctx, filter, req.Limit, offset)
		if err != nil {
			return fmt.Errorf("recent videos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = e.dp.CountRecentVideos(gctx, filter)
		if err != nil {
			return fmt.Errorf("recent count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := make([]ScoredVideo, 0, len(videos))
	for _, v := range videos {
		reason := ReasonPopularThisWeek
		if v.Views < e.rankCfg.NewCreatorViewCeiling {
			reason = ReasonNewCreatorSpotlight
		}
		page = append(page, ScoredVideo{Video: v, Reason: reason})
	}

	items, err := e.assemble(ctx, viewerID, profile, page, start)
	if err != nil {
		return nil, err
	}

	return &Response{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			Surface:        "personalized",
			Tier:           TierAnonymous.String(),
			CandidateCount: len(videos),
			LatencyMS:      e.now().Sub(start).Milliseconds(),
			Timestamp:      start.UTC(),
		},
	}, nil
}

// assemble turns the sliced page into client items: per-viewer flags, live
// badges, and signed playback URLs. Flag and live reads run concurrently.
// A failing live index degrades to no badges with a warning; signing
// failures fail the request since an unplayable item is worse than an
// error.
func (e *Engine) assemble(ctx context.Context, viewerID *uuid.UUID, profile *Profile, page []ScoredVideo, now time.Time) ([]models.FeedVideo, error) {
	if len(page) == 0 {
		return []models.FeedVideo{}, nil
	}

	videoIDs := make([]uuid.UUID, len(page))
	creatorIDs := make([]uuid.UUID, len(page))
	for i, sv := range page {
		videoIDs[i] = sv.Video.ID
		creatorIDs[i] = sv.Video.OwnerID
	}

	var (
		flags map[uuid.UUID]ViewerFlags
		live  map[uuid.UUID]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if viewerID != nil {
		vid := *viewerID
		g.Go(func() error {
			var err error
			flags, err = e.dp.ViewerVideoFlags(gctx, vid, videoIDs)
			if err != nil {
				return fmt.Errorf("viewer flags: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		live, err = e.live.LiveCreators(gctx, creatorIDs)
		if err != nil {
			e.logger.Warn().Err(err).Msg("live index unavailable, omitting badges")
			live = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.FeedVideo, 0, len(page))
	for _, sv := range page {
		signed, err := e.signer.SignedURL(sv.Video.MediaRef, now)
		if err != nil {
			return nil, fmt.Errorf("sign playback url: %w", err)
		}

		item := models.FeedVideo{
			Video:                sv.Video,
			Score:                sv.Score,
			RecommendationReason: string(sv.Reason),
			PlaybackURL:          signed,
			IsLive:               live[sv.Video.OwnerID],
		}
		if viewerID != nil {
			f := flags[sv.Video.ID]
			item.IsLiked = f.Liked
			item.IsBookmarked = f.Bookmarked
		}
		if profile != nil {
			item.IsFollowing = profile.IsFollowing(sv.Video.OwnerID)
		}
		items = append(items, item)
	}
	return items, nil
}

// slicePage returns the 1-based page slice of the ranked list.
func slicePage(ranked []ScoredVideo, page, limit int) []ScoredVideo {
	offset := (page - 1) * limit
	if offset >= len(ranked) || offset < 0 {
		return nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}

// ownerIDs collects the distinct owner IDs of a candidate pool.
func ownerIDs(videos []models.Video) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(videos))
	out := make([]uuid.UUID, 0, len(videos))
	for i := range videos {
		id := videos[i].OwnerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
