// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
	"github.com/reelkit/reelrank/internal/ranking"
)

var validate = validator.New()

// feedQuery is the validated query-parameter set shared by the feed and
// trending endpoints.
type feedQuery struct {
	Page     int    `validate:"min=1,max=10000"`
	Limit    int    `validate:"min=1"`
	Country  string `validate:"omitempty,iso3166_1_alpha2"`
	Language string `validate:"omitempty,bcp47_language_tag"`
}

// telemetryBatch is the request body for POST /telemetry/events.
type telemetryBatch struct {
	Events []models.TelemetryEvent `json:"events" validate:"required,min=1"`
}

// feedbackRequest is the request body for POST /feedback.
type feedbackRequest struct {
	VideoID string `json:"video_id" validate:"required,uuid"`
	Action  string `json:"action" validate:"required"`
	Reason  string `json:"reason" validate:"omitempty,max=500"`
}

// parseFeedRequest builds a ranking.Request from query parameters, clamping
// limit to the configured page-size ceiling and bounding the exclude list.
func parseFeedRequest(r *http.Request, cfg *config.APIConfig, viewerID *uuid.UUID, requestID string) (ranking.Request, error) {
	q := feedQuery{
		Page:     intParam(r, "page", 1),
		Limit:    intParam(r, "limit", cfg.DefaultPageSize),
		Country:  strings.ToUpper(r.URL.Query().Get("country")),
		Language: r.URL.Query().Get("language"),
	}
	if q.Limit > cfg.MaxPageSize {
		q.Limit = cfg.MaxPageSize
	}
	if err := validate.Struct(&q); err != nil {
		return ranking.Request{}, fmt.Errorf("invalid query parameters: %w", err)
	}

	excludeIDs, err := parseExcludeIDs(r.URL.Query().Get("exclude_ids"), cfg.MaxExcludeIDs)
	if err != nil {
		return ranking.Request{}, err
	}

	return ranking.Request{
		ViewerID:   viewerID,
		Page:       q.Page,
		Limit:      q.Limit,
		ExcludeIDs: excludeIDs,
		Country:    q.Country,
		Language:   q.Language,
		RequestID:  requestID,
	}, nil
}

// parseExcludeIDs splits the comma-separated session exclude list. Entries
// beyond the cap are dropped rather than rejected; the feed can tolerate a
// re-shown video but not a failed page.
func parseExcludeIDs(raw string, maxIDs int) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxIDs {
		parts = parts[:maxIDs]
	}
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude_ids entry %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeBody parses a JSON request body into req and runs struct validation.
func decodeBody(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
