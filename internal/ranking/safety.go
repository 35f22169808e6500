// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package ranking

import (
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/models"
)

// SafetyFilter holds the sets of video and creator IDs a viewer must never
// see. It gates candidate retrieval and is re-checked before scoring; a
// candidate's score can never override it.
type SafetyFilter struct {
	// BlockedCreators contains creators blocked in either direction plus
	// creators the viewer suppressed via hide_creator.
	BlockedCreators map[uuid.UUID]struct{}

	// HiddenVideos contains videos the viewer suppressed via not_interested.
	HiddenVideos map[uuid.UUID]struct{}

	// ExcludedVideos contains the caller-supplied already-seen list.
	ExcludedVideos map[uuid.UUID]struct{}
}

// NewSafetyFilter builds a filter from the viewer's block set, suppression
// records, and the caller's exclude list. The exclude list is silently
// truncated to maxExclude entries. For anonymous viewers pass empty slices
// for everything except excludeIDs.
func NewSafetyFilter(blockedUsers, hiddenVideos, hiddenCreators, excludeIDs []uuid.UUID, maxExclude int) *SafetyFilter {
	if maxExclude >= 0 && len(excludeIDs) > maxExclude {
		excludeIDs = excludeIDs[:maxExclude]
	}

	f := &SafetyFilter{
		BlockedCreators: make(map[uuid.UUID]struct{}, len(blockedUsers)+len(hiddenCreators)),
		HiddenVideos:    make(map[uuid.UUID]struct{}, len(hiddenVideos)),
		ExcludedVideos:  make(map[uuid.UUID]struct{}, len(excludeIDs)),
	}
	for _, id := range blockedUsers {
		f.BlockedCreators[id] = struct{}{}
	}
	for _, id := range hiddenCreators {
		f.BlockedCreators[id] = struct{}{}
	}
	for _, id := range hiddenVideos {
		f.HiddenVideos[id] = struct{}{}
	}
	for _, id := range excludeIDs {
		f.ExcludedVideos[id] = struct{}{}
	}
	return f
}

// Admissible reports whether a video may be scored at all: its owner must
// not be blocked and the video itself must be neither hidden nor excluded.
func (f *SafetyFilter) Admissible(v *models.Video) bool {
	if _, blocked := f.BlockedCreators[v.OwnerID]; blocked {
		return false
	}
	if _, hidden := f.HiddenVideos[v.ID]; hidden {
		return false
	}
	if _, excluded := f.ExcludedVideos[v.ID]; excluded {
		return false
	}
	return true
}

// Empty reports whether the filter excludes nothing.
func (f *SafetyFilter) Empty() bool {
	return len(f.BlockedCreators) == 0 && len(f.HiddenVideos) == 0 && len(f.ExcludedVideos) == 0
}

// BlockedCreatorIDs returns the blocked creator set as a slice, for
// providers that push filtering into queries.
func (f *SafetyFilter) BlockedCreatorIDs() []uuid.UUID {
	return setToSlice(f.BlockedCreators)
}

// HiddenVideoIDs returns the hidden video set as a slice.
func (f *SafetyFilter) HiddenVideoIDs() []uuid.UUID {
	return setToSlice(f.HiddenVideos)
}

// ExcludedVideoIDs returns the excluded video set as a slice.
func (f *SafetyFilter) ExcludedVideoIDs() []uuid.UUID {
	return setToSlice(f.ExcludedVideos)
}

func setToSlice(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
