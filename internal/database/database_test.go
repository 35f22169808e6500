// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
	"github.com/reelkit/reelrank/internal/ranking"
)

// setupTestDB creates a file-backed store in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:    filepath.Join(t.TempDir(), "test.db"),
		Threads: 2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func seedVideo(t *testing.T, db *DB, owner uuid.UUID, views int64, age time.Duration) models.Video {
	t.Helper()
	v := models.Video{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     "clip",
		MediaRef:  "media/" + uuid.NewString() + ".m3u8",
		TopicTags: []string{"music", "live"},
		Views:     views,
		CreatedAt: time.Now().UTC().Add(-age).Truncate(time.Millisecond),
	}
	if err := db.UpsertVideo(context.Background(), &v); err != nil {
		t.Fatalf("UpsertVideo: %v", err)
	}
	return v
}

func noFilter() *ranking.SafetyFilter {
	return ranking.NewSafetyFilter(nil, nil, nil, nil, 0)
}

func TestUpsertVideoRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	want := seedVideo(t, db, uuid.New(), 42, time.Hour)

	got, err := db.CandidateVideos(ctx, noFilter(), 10)
	if err != nil {
		t.Fatalf("CandidateVideos: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d videos, want 1", len(got))
	}
	if got[0].ID != want.ID || got[0].OwnerID != want.OwnerID || got[0].Views != 42 {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
	if len(got[0].TopicTags) != 2 || got[0].TopicTags[0] != "music" {
		t.Errorf("topic tags = %v, want [music live]", got[0].TopicTags)
	}

	// Second upsert with new counters must update in place.
	want.Views = 100
	if err := db.UpsertVideo(ctx, &want); err != nil {
		t.Fatalf("second UpsertVideo: %v", err)
	}
	got, err = db.CandidateVideos(ctx, noFilter(), 10)
	if err != nil {
		t.Fatalf("CandidateVideos: %v", err)
	}
	if len(got) != 1 || got[0].Views != 100 {
		t.Errorf("upsert did not update counters: %+v", got)
	}
}

func TestCandidateVideosFilterPushdown(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	blockedCreator := uuid.New()
	clean := seedVideo(t, db, uuid.New(), 10, time.Hour)
	seedVideo(t, db, blockedCreator, 10, time.Hour)
	hidden := seedVideo(t, db, uuid.New(), 10, time.Hour)

	filter := ranking.NewSafetyFilter(
		[]uuid.UUID{blockedCreator}, []uuid.UUID{hidden.ID}, nil, nil, 200)

	got, err := db.CandidateVideos(ctx, filter, 10)
	if err != nil {
		t.Fatalf("CandidateVideos: %v", err)
	}
	if len(got) != 1 || got[0].ID != clean.ID {
		t.Fatalf("filter pushdown failed: %d videos", len(got))
	}

	count, err := db.CountRecentVideos(ctx, filter)
	if err != nil {
		t.Fatalf("CountRecentVideos: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestRecentVideosOrderAndOffset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	oldest := seedVideo(t, db, uuid.New(), 1, 3*time.Hour)
	middle := seedVideo(t, db, uuid.New(), 1, 2*time.Hour)
	newest := seedVideo(t, db, uuid.New(), 1, time.Hour)

	page1, err := db.RecentVideos(ctx, noFilter(), 2, 0)
	if err != nil {
		t.Fatalf("RecentVideos: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != newest.ID || page1[1].ID != middle.ID {
		t.Fatal("first page not reverse-chronological")
	}

	page2, err := db.RecentVideos(ctx, noFilter(), 2, 2)
	if err != nil {
		t.Fatalf("RecentVideos offset: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != oldest.ID {
		t.Fatal("offset page wrong")
	}
}

func TestTrendingCandidatesGateAndWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inside := seedVideo(t, db, uuid.New(), 50, 24*time.Hour)
	seedVideo(t, db, uuid.New(), 5, 24*time.Hour)         // below the view gate
	seedVideo(t, db, uuid.New(), 9000, 30*24*time.Hour)   // outside the window
	localized := seedVideo(t, db, uuid.New(), 60, time.Hour)

	since := time.Now().UTC().AddDate(0, 0, -7)
	got, err := db.TrendingCandidates(ctx, since, 10, "", "", 100)
	if err != nil {
		t.Fatalf("TrendingCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	for _, v := range got {
		if v.ID != inside.ID && v.ID != localized.ID {
			t.Errorf("unexpected candidate %s", v.ID)
		}
	}
}

func TestAppendEventsDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := uuid.New()
	videoID := uuid.New()
	ts := time.Now().UTC().Truncate(time.Millisecond)

	batch := []models.TelemetryEvent{
		{UserID: &userID, VideoID: videoID, EventType: models.EventLike, SessionID: "s1", CreatedAt: ts},
		{UserID: &userID, VideoID: videoID, EventType: models.EventPlay50Pct, SessionID: "s1", CreatedAt: ts},
	}
	if err := db.AppendEvents(ctx, batch); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	// Redelivery of the identical batch must be a no-op.
	if err := db.AppendEvents(ctx, batch); err != nil {
		t.Fatalf("AppendEvents redelivery: %v", err)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 after redelivery", count)
	}
}

func TestEngagementWindowGroups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := uuid.New()
	v := seedVideo(t, db, owner, 10, time.Hour)
	viewer := uuid.New()

	now := time.Now().UTC()
	var events []models.TelemetryEvent
	for i := 0; i < 3; i++ {
		events = append(events, models.TelemetryEvent{
			UserID: &viewer, VideoID: v.ID, EventType: models.EventImpression,
			SessionID: "s1", CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	events = append(events, models.TelemetryEvent{
		UserID: &viewer, VideoID: v.ID, EventType: models.EventLike,
		SessionID: "s1", CreatedAt: now,
	})
	if err := db.AppendEvents(ctx, events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	aggs, err := db.EngagementWindow(ctx, viewer, now.AddDate(0, 0, -14))
	if err != nil {
		t.Fatalf("EngagementWindow: %v", err)
	}
	byType := make(map[models.EventType]ranking.EventAggregate)
	for _, a := range aggs {
		byType[a.EventType] = a
	}
	if byType[models.EventImpression].Count != 3 {
		t.Errorf("impression count = %d, want 3", byType[models.EventImpression].Count)
	}
	if byType[models.EventLike].Count != 1 {
		t.Errorf("like count = %d, want 1", byType[models.EventLike].Count)
	}
	if byType[models.EventLike].OwnerID != owner {
		t.Error("aggregate missing owner join")
	}
}

func TestUpsertFeedbackIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := uuid.New()
	v := seedVideo(t, db, owner, 10, time.Hour)
	viewer := uuid.New()

	rec := models.FeedbackRecord{UserID: viewer, VideoID: v.ID, Action: models.FeedbackHideCreator, Reason: "spam"}
	if err := db.UpsertFeedback(ctx, &rec); err != nil {
		t.Fatalf("UpsertFeedback: %v", err)
	}
	rec2 := rec
	rec2.Reason = "still spam"
	if err := db.UpsertFeedback(ctx, &rec2); err != nil {
		t.Fatalf("repeat UpsertFeedback: %v", err)
	}

	var count int
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedback WHERE user_id = ?", viewer).Scan(&count); err != nil {
		t.Fatalf("count feedback: %v", err)
	}
	if count != 1 {
		t.Errorf("feedback rows = %d, want 1", count)
	}
}

func TestSuppressionsResolveCreators(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := uuid.New()
	hiddenVideo := seedVideo(t, db, uuid.New(), 10, time.Hour)
	creatorVideo := seedVideo(t, db, owner, 10, time.Hour)
	viewer := uuid.New()

	if err := db.UpsertFeedback(ctx, &models.FeedbackRecord{
		UserID: viewer, VideoID: hiddenVideo.ID, Action: models.FeedbackNotInterested,
	}); err != nil {
		t.Fatalf("UpsertFeedback: %v", err)
	}
	if err := db.UpsertFeedback(ctx, &models.FeedbackRecord{
		UserID: viewer, VideoID: creatorVideo.ID, Action: models.FeedbackHideCreator,
	}); err != nil {
		t.Fatalf("UpsertFeedback: %v", err)
	}

	videoIDs, creatorIDs, err := db.Suppressions(ctx, viewer)
	if err != nil {
		t.Fatalf("Suppressions: %v", err)
	}
	if len(videoIDs) != 1 || videoIDs[0] != hiddenVideo.ID {
		t.Errorf("video suppressions = %v", videoIDs)
	}
	if len(creatorIDs) != 1 || creatorIDs[0] != owner {
		t.Errorf("creator suppressions = %v, want owner of the flagged video", creatorIDs)
	}
}

func TestBlockedUsersBothDirections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	viewer := uuid.New()
	blockedByViewer := uuid.New()
	blockedViewer := uuid.New()

	if err := db.UpsertBlock(ctx, &models.BlockEdge{BlockerID: viewer, BlockedID: blockedByViewer}); err != nil {
		t.Fatalf("UpsertBlock: %v", err)
	}
	if err := db.UpsertBlock(ctx, &models.BlockEdge{BlockerID: blockedViewer, BlockedID: viewer}); err != nil {
		t.Fatalf("UpsertBlock: %v", err)
	}

	got, err := db.BlockedUsers(ctx, viewer)
	if err != nil {
		t.Fatalf("BlockedUsers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("blocked = %d users, want 2 (both directions)", len(got))
	}
}

func TestFollowsAndFollowerCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	creator := uuid.New()
	fans := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, fan := range fans {
		if err := db.UpsertFollow(ctx, &models.FollowEdge{FollowerID: fan, FollowingID: creator}); err != nil {
			t.Fatalf("UpsertFollow: %v", err)
		}
	}
	// Duplicate follow is a no-op.
	if err := db.UpsertFollow(ctx, &models.FollowEdge{FollowerID: fans[0], FollowingID: creator}); err != nil {
		t.Fatalf("duplicate UpsertFollow: %v", err)
	}

	followed, err := db.FollowedCreators(ctx, fans[0])
	if err != nil {
		t.Fatalf("FollowedCreators: %v", err)
	}
	if len(followed) != 1 || followed[0] != creator {
		t.Errorf("followed = %v", followed)
	}

	counts, err := db.CreatorFollowerCounts(ctx, []uuid.UUID{creator, uuid.New()})
	if err != nil {
		t.Fatalf("CreatorFollowerCounts: %v", err)
	}
	if counts[creator] != 3 {
		t.Errorf("follower count = %d, want 3", counts[creator])
	}

	if err := db.DeleteFollow(ctx, fans[0], creator); err != nil {
		t.Fatalf("DeleteFollow: %v", err)
	}
	followed, err = db.FollowedCreators(ctx, fans[0])
	if err != nil {
		t.Fatalf("FollowedCreators after delete: %v", err)
	}
	if len(followed) != 0 {
		t.Errorf("followed after delete = %v", followed)
	}
}

func TestViewerVideoFlags(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v1 := seedVideo(t, db, uuid.New(), 10, time.Hour)
	v2 := seedVideo(t, db, uuid.New(), 10, time.Hour)
	viewer := uuid.New()
	now := time.Now().UTC()

	events := []models.TelemetryEvent{
		{UserID: &viewer, VideoID: v1.ID, EventType: models.EventLike, SessionID: "s", CreatedAt: now},
		{UserID: &viewer, VideoID: v2.ID, EventType: models.EventBookmark, SessionID: "s", CreatedAt: now},
	}
	if err := db.AppendEvents(ctx, events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	flags, err := db.ViewerVideoFlags(ctx, viewer, []uuid.UUID{v1.ID, v2.ID})
	if err != nil {
		t.Fatalf("ViewerVideoFlags: %v", err)
	}
	if !flags[v1.ID].Liked || flags[v1.ID].Bookmarked {
		t.Errorf("v1 flags = %+v", flags[v1.ID])
	}
	if flags[v2.ID].Liked || !flags[v2.ID].Bookmarked {
		t.Errorf("v2 flags = %+v", flags[v2.ID])
	}
}
