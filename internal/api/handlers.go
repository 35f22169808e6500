// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/logging"
	"github.com/reelkit/reelrank/internal/middleware"
	"github.com/reelkit/reelrank/internal/models"
	"github.com/reelkit/reelrank/internal/ranking"
	"github.com/reelkit/reelrank/internal/telemetry"
)

// Ranker produces feed pages. Implemented by ranking.Engine.
type Ranker interface {
	Personalized(ctx context.Context, req ranking.Request) (*ranking.Response, error)
	Trending(ctx context.Context, req ranking.Request) (*ranking.Response, error)
}

// Ingester accepts telemetry batches. Implemented by telemetry.Ingestor.
type Ingester interface {
	Ingest(ctx context.Context, viewerID *uuid.UUID, events []models.TelemetryEvent) telemetry.Result
}

// FeedbackStore persists negative-feedback records.
type FeedbackStore interface {
	UpsertFeedback(ctx context.Context, rec *models.FeedbackRecord) error
}

// LiveRegistry tracks live-broadcast sessions.
type LiveRegistry interface {
	Mark(ctx context.Context, creatorID uuid.UUID) error
	Unmark(ctx context.Context, creatorID uuid.UUID) error
}

// Handler holds the endpoint implementations and their dependencies.
type Handler struct {
	ranker   Ranker
	ingestor Ingester
	feedback FeedbackStore
	live     LiveRegistry
	health   HealthChecker
	cfg      *config.APIConfig
}

// NewHandler wires the endpoint handlers.
func NewHandler(ranker Ranker, ingestor Ingester, feedback FeedbackStore, live LiveRegistry, health HealthChecker, cfg *config.APIConfig) *Handler {
	return &Handler{
		ranker:   ranker,
		ingestor: ingestor,
		feedback: feedback,
		live:     live,
		health:   health,
		cfg:      cfg,
	}
}

// Feed serves GET /api/v1/feed.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.ranker.Personalized)
}

// Trending serves GET /api/v1/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.ranker.Trending)
}

func (h *Handler) serveFeed(w http.ResponseWriter, r *http.Request, rank func(context.Context, ranking.Request) (*ranking.Response, error)) {
	viewerID := middleware.ViewerFromContext(r.Context())
	req, err := parseFeedRequest(r, h.cfg, viewerID, logging.RequestIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	resp, err := rank(r.Context(), req)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("feed ranking failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "feed temporarily unavailable")
		return
	}
	respondSuccess(w, http.StatusOK, resp)
}

// TelemetryEvents serves POST /api/v1/telemetry/events. Ingestion is
// best-effort: the batch is acknowledged with per-event accounting even when
// parts of it were dropped or delivery is degraded.
func (h *Handler) TelemetryEvents(w http.ResponseWriter, r *http.Request) {
	var batch telemetryBatch
	if err := decodeBody(r, &batch); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	viewerID := middleware.ViewerFromContext(r.Context())
	result := h.ingestor.Ingest(r.Context(), viewerID, batch.Events)
	respondSuccess(w, http.StatusAccepted, result)
}

// Feedback serves POST /api/v1/feedback. Requires an authenticated viewer;
// feedback is keyed by (user, video, action).
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerFromContext(r.Context())
	if viewerID == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "feedback requires an authenticated viewer")
		return
	}

	var req feedbackRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	action := models.FeedbackAction(req.Action)
	if !action.Valid() {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "unknown feedback action")
		return
	}

	rec := &models.FeedbackRecord{
		UserID:    *viewerID,
		VideoID:   uuid.MustParse(req.VideoID),
		Action:    action,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.feedback.UpsertFeedback(r.Context(), rec); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("feedback upsert failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "could not record feedback")
		return
	}
	respondSuccess(w, http.StatusOK, rec)
}

// LiveStart serves POST /api/v1/live/{creatorID}.
func (h *Handler) LiveStart(w http.ResponseWriter, r *http.Request) {
	h.liveUpdate(w, r, h.live.Mark)
}

// LiveEnd serves DELETE /api/v1/live/{creatorID}.
func (h *Handler) LiveEnd(w http.ResponseWriter, r *http.Request) {
	h.liveUpdate(w, r, h.live.Unmark)
}

func (h *Handler) liveUpdate(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) error) {
	creatorID, err := uuid.Parse(chi.URLParam(r, "creatorID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid creator ID")
		return
	}
	if err := op(r.Context(), creatorID); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("creator_id", creatorID.String()).Msg("live index update failed")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "live index unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
