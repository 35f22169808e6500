// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEventTypeValid(t *testing.T) {
	valid := []EventType{
		EventImpression, EventPlay3s, EventPlay25Pct, EventPlay50Pct,
		EventPlay75Pct, EventPlay100Pct, EventSkip, EventRewatch,
		EventDwell, EventLike, EventBookmark, EventShare, EventComment,
	}
	for _, et := range valid {
		if !et.Valid() {
			t.Errorf("%q should be valid", et)
		}
	}

	invalid := []EventType{"", "play", "view", "PLAY_3S", "impressions"}
	for _, et := range invalid {
		if et.Valid() {
			t.Errorf("%q should be invalid", et)
		}
	}
}

func TestEventTypeWatchPct(t *testing.T) {
	tests := []struct {
		et   EventType
		want int
	}{
		{EventPlay3s, 0},
		{EventPlay25Pct, 25},
		{EventPlay50Pct, 50},
		{EventPlay75Pct, 75},
		{EventPlay100Pct, 100},
		{EventLike, -1},
		{EventSkip, -1},
		{EventImpression, -1},
	}
	for _, tt := range tests {
		if got := tt.et.WatchPct(); got != tt.want {
			t.Errorf("WatchPct(%q) = %d, want %d", tt.et, got, tt.want)
		}
	}
}

func TestFeedbackActionValid(t *testing.T) {
	for _, a := range []FeedbackAction{FeedbackNotInterested, FeedbackHideCreator, FeedbackHideSound, FeedbackReport} {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if FeedbackAction("dislike").Valid() {
		t.Error("unknown action should be invalid")
	}
}

func TestDedupeIDDeterministic(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := TelemetryEvent{
		UserID:    &userID,
		VideoID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		EventType: EventLike,
		SessionID: "sess-1",
		CreatedAt: at,
	}
	b := a

	if a.DedupeID() != b.DedupeID() {
		t.Error("identical events must share a dedupe ID")
	}

	b.EventType = EventSkip
	if a.DedupeID() == b.DedupeID() {
		t.Error("different event types must not collide")
	}

	c := a
	c.UserID = nil
	if a.DedupeID() == c.DedupeID() {
		t.Error("anonymous variant must not collide with identified event")
	}
}

func TestVideoRates(t *testing.T) {
	v := Video{Views: 200, SharesCount: 30, CompletionsCount: 120, Likes: 10, CommentsCount: 4}

	if got := v.ShareRate(); got != 0.15 {
		t.Errorf("ShareRate = %v, want 0.15", got)
	}
	if got := v.CompletionRate(); got != 0.6 {
		t.Errorf("CompletionRate = %v, want 0.6", got)
	}
	// likes*2 + views + comments*3
	if got := v.Engagement(); got != 10*2+200+4*3 {
		t.Errorf("Engagement = %v, want %v", got, 10*2+200+4*3)
	}

	empty := Video{}
	if empty.ShareRate() != 0 || empty.CompletionRate() != 0 {
		t.Error("zero-view video must have zero rates")
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		total       int
		wantPages   int
		wantHasMore bool
	}{
		{"exact fit", 1, 20, 20, 1, false},
		{"partial last page", 1, 20, 45, 3, true},
		{"last page", 3, 20, 45, 3, false},
		{"empty", 1, 20, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", p.HasMore, tt.wantHasMore)
			}
		})
	}
}
