// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/reelkit/reelrank/internal/models"
)

// UpsertFeedback records an explicit suppression signal. Repeating the same
// (user, video, action) triple refreshes the reason and timestamp instead of
// creating a second row, so the endpoint is idempotent.
func (db *DB) UpsertFeedback(ctx context.Context, rec *models.FeedbackRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO feedback (user_id, video_id, action, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, video_id, action) DO UPDATE SET
			reason = excluded.reason,
			updated_at = excluded.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		rec.UserID, rec.VideoID, string(rec.Action), rec.Reason, rec.CreatedAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}
	return nil
}
