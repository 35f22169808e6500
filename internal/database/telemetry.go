// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
)

// AppendEvents appends a batch of telemetry events in one transaction.
// Duplicate events (same deterministic fingerprint) are silently dropped,
// so at-least-once redelivery from the pipeline is safe.
func (db *DB) AppendEvents(ctx context.Context, events []models.TelemetryEvent) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO telemetry_events
		(dedupe_id, event_id, user_id, video_id, event_type, payload, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dedupe_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range events {
		e := &events[i]
		if e.EventID == uuid.Nil {
			e.EventID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}

		var userID any
		if e.UserID != nil {
			userID = *e.UserID
		}
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}

		if _, err := stmt.ExecContext(ctx,
			e.DedupeID(), e.EventID, userID, e.VideoID,
			string(e.EventType), payload, e.SessionID, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("append event %s: %w", e.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// CountEvents returns the total number of stored telemetry events.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM telemetry_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
