// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
	"github.com/reelkit/reelrank/internal/ranking"
)

const videoColumns = `id, owner_id, title, media_ref, topic_tags, country_code, language,
	views, likes, comments_count, shares_count, completions_count, created_at`

// filterPredicates renders the safety filter as SQL predicates. Returns an
// empty string when the filter excludes nothing.
func filterPredicates(filter *ranking.SafetyFilter) (string, []any) {
	if filter == nil || filter.Empty() {
		return "", nil
	}

	var clauses []string
	var args []any

	if creators := filter.BlockedCreatorIDs(); len(creators) > 0 {
		clauses = append(clauses, fmt.Sprintf("owner_id NOT IN (%s)", placeholders(len(creators))))
		for _, id := range creators {
			args = append(args, id)
		}
	}

	videoIDs := append(filter.HiddenVideoIDs(), filter.ExcludedVideoIDs()...)
	if len(videoIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("id NOT IN (%s)", placeholders(len(videoIDs))))
		for _, id := range videoIDs {
			args = append(args, id)
		}
	}

	return strings.Join(clauses, " AND "), args
}

// CandidateVideos returns the over-provisioned personalized candidate pool,
// most recent first.
func (db *DB) CandidateVideos(ctx context.Context, filter *ranking.SafetyFilter, limit int) ([]models.Video, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT " + videoColumns + " FROM videos"
	where, args := filterPredicates(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	return db.queryVideos(ctx, query, args...)
}

// RecentVideos returns the reverse-chronological fallback page.
func (db *DB) RecentVideos(ctx context.Context, filter *ranking.SafetyFilter, limit, offset int) ([]models.Video, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT " + videoColumns + " FROM videos"
	where, args := filterPredicates(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return db.queryVideos(ctx, query, args...)
}

// CountRecentVideos counts videos passing the safety filter, for fallback
// pagination metadata.
func (db *DB) CountRecentVideos(ctx context.Context, filter *ranking.SafetyFilter) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT COUNT(*) FROM videos"
	where, args := filterPredicates(filter)
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent videos: %w", err)
	}
	return count, nil
}

// TrendingCandidates returns videos inside the trending window that pass the
// minimum-views quality gate, optionally narrowed by locale.
func (db *DB) TrendingCandidates(ctx context.Context, since time.Time, minViews int64, country, language string, limit int) ([]models.Video, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT " + videoColumns + " FROM videos WHERE created_at >= ? AND views >= ?"
	args := []any{since, minViews}
	if country != "" {
		query += " AND country_code = ?"
		args = append(args, country)
	}
	if language != "" {
		query += " AND language = ?"
		args = append(args, language)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	return db.queryVideos(ctx, query, args...)
}

// EngagementWindow returns the viewer's grouped telemetry since the given
// time, each row joined with the video's owner. Events on videos no longer
// in the catalog are ignored.
func (db *DB) EngagementWindow(ctx context.Context, viewerID uuid.UUID, since time.Time) ([]ranking.EventAggregate, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT e.video_id, v.owner_id, e.event_type, COUNT(*)
		FROM telemetry_events e
		JOIN videos v ON v.id = e.video_id
		WHERE e.user_id = ? AND e.created_at >= ?
		GROUP BY e.video_id, v.owner_id, e.event_type`

	rows, err := db.conn.QueryContext(ctx, query, viewerID, since)
	if err != nil {
		return nil, fmt.Errorf("engagement window: %w", err)
	}
	defer closeQuietly(rows)

	var out []ranking.EventAggregate
	for rows.Next() {
		var agg ranking.EventAggregate
		var eventType string
		if err := rows.Scan(&agg.VideoID, &agg.OwnerID, &eventType, &agg.Count); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		agg.EventType = models.EventType(eventType)
		out = append(out, agg)
	}
	return out, rows.Err()
}

// FollowedCreators returns creator IDs the viewer explicitly follows.
func (db *DB) FollowedCreators(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	return db.queryIDs(ctx, "SELECT creator_id FROM follows WHERE follower_id = ?", viewerID)
}

// BlockedUsers returns users blocked in either direction: blocking someone
// removes you from their feed too.
func (db *DB) BlockedUsers(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT blocked_id FROM blocks WHERE blocker_id = ?
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = ?`
	return db.queryIDs(ctx, query, viewerID, viewerID)
}

// Suppressions returns videos hidden via not_interested and creators hidden
// via hide_creator. hide_creator is stored against the video that prompted
// it and resolved to the owner here, so it keeps working even if the video
// is later removed from rotation.
func (db *DB) Suppressions(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
	videoIDs, err := db.queryIDs(ctx,
		"SELECT video_id FROM feedback WHERE user_id = ? AND action = ?",
		viewerID, string(models.FeedbackNotInterested))
	if err != nil {
		return nil, nil, err
	}

	creatorIDs, err := db.queryIDs(ctx,
		`SELECT DISTINCT v.owner_id FROM feedback f
		JOIN videos v ON v.id = f.video_id
		WHERE f.user_id = ? AND f.action = ?`,
		viewerID, string(models.FeedbackHideCreator))
	if err != nil {
		return nil, nil, err
	}

	return videoIDs, creatorIDs, nil
}

// ViewerVideoFlags returns liked/bookmarked flags for the given videos,
// derived from the viewer's telemetry.
func (db *DB) ViewerVideoFlags(ctx context.Context, viewerID uuid.UUID, videoIDs []uuid.UUID) (map[uuid.UUID]ranking.ViewerFlags, error) {
	out := make(map[uuid.UUID]ranking.ViewerFlags, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT DISTINCT video_id, event_type FROM telemetry_events
		WHERE user_id = ? AND event_type IN (?, ?) AND video_id IN (%s)`,
		placeholders(len(videoIDs)))
	args := []any{viewerID, string(models.EventLike), string(models.EventBookmark)}
	for _, id := range videoIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("viewer flags: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var videoID uuid.UUID
		var eventType string
		if err := rows.Scan(&videoID, &eventType); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		flags := out[videoID]
		switch models.EventType(eventType) {
		case models.EventLike:
			flags.Liked = true
		case models.EventBookmark:
			flags.Bookmarked = true
		}
		out[videoID] = flags
	}
	return out, rows.Err()
}

// CreatorFollowerCounts returns follower counts for the given creators.
func (db *DB) CreatorFollowerCounts(ctx context.Context, creatorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return out, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT creator_id, COUNT(*) FROM follows
		WHERE creator_id IN (%s) GROUP BY creator_id`, placeholders(len(creatorIDs)))
	args := make([]any, len(creatorIDs))
	for i, id := range creatorIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("follower counts: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var id uuid.UUID
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan follower count: %w", err)
		}
		out[id] = count
	}
	return out, rows.Err()
}

// queryVideos runs a video SELECT and scans the full column set.
func (db *DB) queryVideos(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVideo(rows *sql.Rows) (models.Video, error) {
	var v models.Video
	var title, tags, country, language sql.NullString
	if err := rows.Scan(
		&v.ID, &v.OwnerID, &title, &v.MediaRef, &tags, &country, &language,
		&v.Views, &v.Likes, &v.CommentsCount, &v.SharesCount, &v.CompletionsCount,
		&v.CreatedAt,
	); err != nil {
		return v, fmt.Errorf("scan video: %w", err)
	}
	v.Title = title.String
	v.CountryCode = country.String
	v.Language = language.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &v.TopicTags); err != nil {
			return v, fmt.Errorf("decode topic tags: %w", err)
		}
	}
	return v, nil
}

// queryIDs runs a single-UUID-column SELECT.
func (db *DB) queryIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer closeQuietly(rows)

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
