// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema operations independently of request contexts.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates all tables and indexes. The complete schema lives in
// the initial CREATE statements; there are no migrations yet.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		// Video catalog projection. Engagement counters are maintained by
		// the catalog consumer; ranking only reads them.
		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT,
			media_ref TEXT NOT NULL,
			topic_tags TEXT,
			country_code TEXT,
			language TEXT,
			views BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			comments_count BIGINT NOT NULL DEFAULT 0,
			shares_count BIGINT NOT NULL DEFAULT 0,
			completions_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Social graph projections.
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id UUID NOT NULL,
			creator_id UUID NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (follower_id, creator_id)
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			blocker_id UUID NOT NULL,
			blocked_id UUID NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (blocker_id, blocked_id)
		)`,

		// Explicit viewer feedback. The composite key makes the upsert
		// idempotent: repeating an action is a no-op.
		`CREATE TABLE IF NOT EXISTS feedback (
			user_id UUID NOT NULL,
			video_id UUID NOT NULL,
			action TEXT NOT NULL,
			reason TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, video_id, action)
		)`,

		// Append-only telemetry log. dedupe_id is a deterministic
		// fingerprint of (user, video, type, session, timestamp), so
		// at-least-once delivery never double-counts.
		`CREATE TABLE IF NOT EXISTS telemetry_events (
			dedupe_id UUID PRIMARY KEY,
			event_id UUID NOT NULL,
			user_id UUID,
			video_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			session_id TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_trending ON videos (created_at, views)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_creator ON follows (creator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks (blocked_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback (user_id, action)`,
		`CREATE INDEX IF NOT EXISTS idx_telemetry_user_time ON telemetry_events (user_id, created_at)`,
	}

	for _, q := range append(queries, indexes...) {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
