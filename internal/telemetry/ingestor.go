// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/metrics"
	"github.com/reelkit/reelrank/internal/models"
)

// EventSink is where accepted events go: the NATS publisher in async mode,
// the breaker-protected appender in direct mode.
type EventSink interface {
	Deliver(ctx context.Context, events []models.TelemetryEvent) error
}

// Result summarizes what happened to a batch.
type Result struct {
	Accepted  int `json:"accepted"`
	Truncated int `json:"truncated"`
	Dropped   int `json:"dropped"`
	Throttled int `json:"throttled"`
}

// Ingestor shapes incoming telemetry batches and hands them to the sink.
/// Ingest never returns an error to the HTTP layer: delivery problems are
// logged and counted, and the caller is acknowledged regardless.
type Ingestor struct {
	sink    EventSink
	cfg     *config.TelemetryConfig
	limiter *sessionLimiter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewIngestor creates a batch ingestor.
func NewIngestor(sink EventSink, cfg *config.TelemetryConfig, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		sink:    sink,
		cfg:     cfg,
		limiter: newSessionLimiter(cfg.SessionRateLimit, cfg.SessionRateBurst),
		logger:  logger.With().Str("component", "telemetry-ingestor").Logger(),
		now:     time.Now,
	}
}

// Ingest validates, truncates, throttles, and delivers one batch. viewerID
// is nil for anonymous sessions; it overrides any user id in the events.
func (in *Ingestor) Ingest(ctx context.Context, viewerID *uuid.UUID, events []models.TelemetryEvent) Result {
	var res Result
	now := in.now()

	if len(events) > in.cfg.MaxBatchSize {
		res.Truncated = len(events) - in.cfg.MaxBatchSize
		events = events[:in.cfg.MaxBatchSize]
	}

	accepted := make([]models.TelemetryEvent, 0, len(events))
	for _, e := range events {
		if !e.EventType.Valid() {
			res.Dropped++
			metrics.TelemetryEventsDropped.WithLabelValues("invalid_type").Inc()
			continue
		}
		if e.VideoID == uuid.Nil {
			res.Dropped++
			metrics.TelemetryEventsDropped.WithLabelValues("missing_video").Inc()
			continue
		}
		if e.SessionID != "" && !in.limiter.allowN(e.SessionID, 1, now) {
			res.Throttled++
			metrics.TelemetryEventsDropped.WithLabelValues("throttled").Inc()
			continue
		}

		e.UserID = viewerID
		if e.EventID == uuid.Nil {
			e.EventID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now.UTC()
		}
		accepted = append(accepted, e)
	}

	res.Accepted = len(accepted)
	if len(accepted) == 0 {
		return res
	}

	if err := in.sink.Deliver(ctx, accepted); err != nil {
		// Best-effort contract: the caller is acknowledged anyway.
		in.logger.Error().Err(err).Int("batch", len(accepted)).Msg("delivery failed, events lost")
		metrics.TelemetryEventsDropped.WithLabelValues("delivery_failed").Add(float64(len(accepted)))
		res.Accepted = 0
		res.Dropped += len(accepted)
		return res
	}

	metrics.TelemetryEventsIngested.Add(float64(len(accepted)))
	return res
}
