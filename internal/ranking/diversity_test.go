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

func TestEnforceCreatorCap(t *testing.T) {
	prolific := uuid.New()
	other := uuid.New()

	ranked := []ScoredVideo{
		{Video: models.Video{ID: uuid.New(), OwnerID: prolific}, Score: 10},
		{Video: models.Video{ID: uuid.New(), OwnerID: prolific}, Score: 9},
		{Video: models.Video{ID: uuid.New(), OwnerID: prolific}, Score: 8},
		{Video: models.Video{ID: uuid.New(), OwnerID: other}, Score: 7},
		{Video: models.Video{ID: uuid.New(), OwnerID: prolific}, Score: 6},
		{Video: models.Video{ID: uuid.New(), OwnerID: other}, Score: 5},
	}

	capped := EnforceCreatorCap(ranked, 2)
	if len(capped) != 4 {
		t.Fatalf("len = %d, want 4", len(capped))
	}

	counts := make(map[uuid.UUID]int)
	for _, sv := range capped {
		counts[sv.Video.OwnerID]++
	}
	if counts[prolific] != 2 || counts[other] != 2 {
		t.Errorf("per-creator counts = %v, want 2 each", counts)
	}

	// Survivors must be the two highest-ranked per creator, in order.
	wantIDs := []uuid.UUID{ranked[0].Video.ID, ranked[1].Video.ID, ranked[3].Video.ID, ranked[5].Video.ID}
	for i, sv := range capped {
		if sv.Video.ID != wantIDs[i] {
			t.Fatalf("position %d: unexpected video", i)
		}
	}
}

func TestEnforceCreatorCapDisabled(t *testing.T) {
	owner := uuid.New()
	ranked := []ScoredVideo{
		{Video: models.Video{ID: uuid.New(), OwnerID: owner}},
		{Video: models.Video{ID: uuid.New(), OwnerID: owner}},
		{Video: models.Video{ID: uuid.New(), OwnerID: owner}},
	}
	if got := EnforceCreatorCap(ranked, 0); len(got) != 3 {
		t.Errorf("cap 0 should pass through, got %d items", len(got))
	}
}
