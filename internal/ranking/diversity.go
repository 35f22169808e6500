// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import "github.com/google/uuid"

// EnforceCreatorCap walks the ranked list in order and drops any video whose
// creator already holds maxPerCreator slots. A single forward pass preserves
// relative order; lower-ranked videos never displace higher-ranked ones. A
// cap of zero or less disables enforcement.
func EnforceCreatorCap(ranked []ScoredVideo, maxPerCreator int) []ScoredVideo {
	if maxPerCreator <= 0 {
		return ranked
	}
	counts := make(map[uuid.UUID]int)
	out := make([]ScoredVideo, 0, len(ranked))
	for _, sv := range ranked {
		if counts[sv.Video.OwnerID] >= maxPerCreator {
			continue
		}
		counts[sv.Video.OwnerID]++
		out = append(out, sv)
	}
	return out
}
