// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sessionLimiter tracks a token bucket per session ID. Stale sessions are
// pruned lazily on access so the map cannot grow without bound.
type sessionLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	lastGC   time.Time
}

type sessionEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	sessionIdleTTL    = 10 * time.Minute
	sessionGCInterval = time.Minute
)

func newSessionLimiter(eventsPerSecond float64, burst int) *sessionLimiter {
	return &sessionLimiter{
		limit:    rate.Limit(eventsPerSecond),
		burst:    burst,
		sessions: make(map[string]*sessionEntry),
		lastGC:   time.Now(),
	}
}

// allowN reports whether the session may submit n more events now.
func (s *sessionLimiter) allowN(sessionID string, n int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastGC) > sessionGCInterval {
		for id, entry := range s.sessions {
			if now.Sub(entry.lastSeen) > sessionIdleTTL {
				delete(s.sessions, id)
			}
		}
		s.lastGC = now
	}

	entry, ok := s.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.sessions[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, n)
}
