// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// EventType classifies a telemetry interaction event.
type EventType string

// Known telemetry event types. Anything else is dropped at ingestion.
const (
	EventImpression EventType = "impression"
	EventPlay3s     EventType = "play_3s"
	EventPlay25Pct  EventType = "play_25pct"
	EventPlay50Pct  EventType = "play_50pct"
	EventPlay75Pct  EventType = "play_75pct"
	EventPlay100Pct EventType = "play_100pct"
	EventSkip       EventType = "skip"
	EventRewatch    EventType = "rewatch"
	EventDwell      EventType = "dwell"
	EventLike       EventType = "like"
	EventBookmark   EventType = "bookmark"
	EventShare      EventType = "share"
	EventComment    EventType = "comment"
)

// Valid reports whether the event type is one of the known kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventImpression, EventPlay3s, EventPlay25Pct, EventPlay50Pct,
		EventPlay75Pct, EventPlay100Pct, EventSkip, EventRewatch,
		EventDwell, EventLike, EventBookmark, EventShare, EventComment:
		return true
	default:
		return false
	}
}

// WatchPct returns the watch depth this event attests to, or -1 for
// non-playback events.
func (t EventType) WatchPct() int {
	switch t {
	case EventPlay3s:
		return 0
	case EventPlay25Pct:
		return 25
	case EventPlay50Pct:
		return 50
	case EventPlay75Pct:
		return 75
	case EventPlay100Pct:
		return 100
	default:
		return -1
	}
}

// TelemetryEvent is an append-only interaction event. UserID is nil for
// anonymous viewers. Payload is an opaque, schema-less bag the ranking core
// never reads; only EventType drives scoring.
type TelemetryEvent struct {
	EventID   uuid.UUID       `json:"event_id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	VideoID   uuid.UUID       `json:"video_id"`
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// DedupeID returns a deterministic event ID derived from the identifying
// fields. Duplicate rows within a batch (or across retried batches) collapse
// to the same ID, so the storage layer's primary key absorbs them.
func (e *TelemetryEvent) DedupeID() uuid.UUID {
	userPart := ""
	if e.UserID != nil {
		userPart = e.UserID.String()
	}
	name := userPart + "|" + e.VideoID.String() + "|" + string(e.EventType) +
		"|" + e.SessionID + "|" + e.CreatedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
