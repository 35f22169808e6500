// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker aggregates dependency probes for the health endpoints.
// Components maps a component name to a status function ("ok", "open",
// "degraded", ...); entries are optional and depend on deployment mode.
type HealthChecker struct {
	Storage    Pinger
	Components map[string]func() string
}

type healthReport struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthLive serves GET /api/v1/health/live. Process-up probe only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, healthReport{Status: "ok", Timestamp: time.Now().UTC()})
}

// HealthReady serves GET /api/v1/health/ready. Ready means storage answers;
// a feed service that cannot read candidates serves nothing useful.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.health.Storage.Ping(ctx); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "storage unreachable")
		return
	}
	respondSuccess(w, http.StatusOK, healthReport{Status: "ready", Timestamp: time.Now().UTC()})
}

// Health serves GET /api/v1/health with per-component status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Components: map[string]string{},
	}

	if err := h.health.Storage.Ping(ctx); err != nil {
		report.Status = "degraded"
		report.Components["storage"] = "unreachable"
	} else {
		report.Components["storage"] = "ok"
	}

	for name, check := range h.health.Components {
		status := check()
		report.Components[name] = status
		if status != "ok" && status != "closed" && status != "running" {
			report.Status = "degraded"
		}
	}

	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, code, report)
}
