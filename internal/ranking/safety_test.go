// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"testing"

	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
)

func TestSafetyFilterAdmissible(t *testing.T) {
	blocked := uuid.New()
	hiddenCreator := uuid.New()
	hiddenVideo := uuid.New()
	excluded := uuid.New()

	f := NewSafetyFilter(
		[]uuid.UUID{blocked},
		[]uuid.UUID{hiddenVideo},
		[]uuid.UUID{hiddenCreator},
		[]uuid.UUID{excluded},
		200,
	)

	tests := []struct {
		name  string
		video models.Video
		want  bool
	}{
		{"clean video", models.Video{ID: uuid.New(), OwnerID: uuid.New()}, true},
		{"blocked creator", models.Video{ID: uuid.New(), OwnerID: blocked}, false},
		{"hidden creator", models.Video{ID: uuid.New(), OwnerID: hiddenCreator}, false},
		{"hidden video", models.Video{ID: hiddenVideo, OwnerID: uuid.New()}, false},
		{"excluded video", models.Video{ID: excluded, OwnerID: uuid.New()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Admissible(&tt.video); got != tt.want {
				t.Errorf("Admissible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafetyFilterExcludeTruncation(t *testing.T) {
	excludeIDs := make([]uuid.UUID, 250)
	for i := range excludeIDs {
		excludeIDs[i] = uuid.New()
	}

	f := NewSafetyFilter(nil, nil, nil, excludeIDs, 200)
	if len(f.ExcludedVideos) != 200 {
		t.Fatalf("excluded = %d, want 200", len(f.ExcludedVideos))
	}

	// The first 200 are honored, the overflow is dropped.
	if _, ok := f.ExcludedVideos[excludeIDs[199]]; !ok {
		t.Error("entry 199 should be excluded")
	}
	if _, ok := f.ExcludedVideos[excludeIDs[200]]; ok {
		t.Error("entry 200 should have been truncated")
	}
}

func TestSafetyFilterEmpty(t *testing.T) {
	if !NewSafetyFilter(nil, nil, nil, nil, 200).Empty() {
		t.Error("filter with no entries should be empty")
	}
	if NewSafetyFilter([]uuid.UUID{uuid.New()}, nil, nil, nil, 200).Empty() {
		t.Error("filter with a blocked creator is not empty")
	}
}
