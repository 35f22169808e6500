// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
)

// UpsertVideo applies a catalog projection update. The catalog service owns
// the canonical record; the latest message wins wholesale.
func (db *DB) UpsertVideo(ctx context.Context, v *models.Video) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var tags any
	if len(v.TopicTags) > 0 {
		encoded, err := json.Marshal(v.TopicTags)
		if err != nil {
			return fmt.Errorf("encode topic tags: %w", err)
		}
		tags = string(encoded)
	}

	query := `INSERT INTO videos (id, owner_id, title, media_ref, topic_tags,
			country_code, language, views, likes, comments_count, shares_count,
			completions_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			media_ref = excluded.media_ref,
			topic_tags = excluded.topic_tags,
			country_code = excluded.country_code,
			language = excluded.language,
			views = excluded.views,
			likes = excluded.likes,
			comments_count = excluded.comments_count,
			shares_count = excluded.shares_count,
			completions_count = excluded.completions_count,
			updated_at = excluded.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		v.ID, v.OwnerID, v.Title, v.MediaRef, tags, v.CountryCode, v.Language,
		v.Views, v.Likes, v.CommentsCount, v.SharesCount, v.CompletionsCount,
		v.CreatedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}
	return nil
}

// DeleteVideo removes a video from the catalog projection.
func (db *DB) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

// UpsertFollow applies a follow-edge projection update.
func (db *DB) UpsertFollow(ctx context.Context, edge *models.FollowEdge) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO follows (follower_id, creator_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, creator_id) DO NOTHING`
	if _, err := db.conn.ExecContext(ctx, query, edge.FollowerID, edge.FollowingID, edge.CreatedAt); err != nil {
		return fmt.Errorf("upsert follow: %w", err)
	}
	return nil
}

// DeleteFollow removes a follow edge.
func (db *DB) DeleteFollow(ctx context.Context, followerID, creatorID uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id = ? AND creator_id = ?", followerID, creatorID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// UpsertBlock applies a block-edge projection update.
func (db *DB) UpsertBlock(ctx context.Context, edge *models.BlockEdge) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING`
	if _, err := db.conn.ExecContext(ctx, query, edge.BlockerID, edge.BlockedID, edge.CreatedAt); err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}
	return nil
}

// DeleteBlock removes a block edge.
func (db *DB) DeleteBlock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx,
		"DELETE FROM blocks WHERE blocker_id = ? AND blocked_id = ?", blockerID, blockedID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}
