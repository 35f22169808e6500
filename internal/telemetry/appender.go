// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/models"
)

// EventStore is the append side of the projection store.
type EventStore interface {
	AppendEvents(ctx context.Context, events []models.TelemetryEvent) error
}

// Appender writes event batches to the store behind a circuit breaker.
// When the store misbehaves the breaker opens and appends fail fast instead
// of piling goroutines on a stuck connection; JetStream redelivers once the
// breaker closes again.
type Appender struct {
	store   EventStore
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

// NewAppender creates a breaker-protected appender.
func NewAppender(store EventStore, cfg *config.TelemetryConfig, logger zerolog.Logger) *Appender {
	settings := gobreaker.Settings{
		Name:     "telemetry-append",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
	}
	return &Appender{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger.With().Str("component", "telemetry-appender").Logger(),
	}
}

// Append writes a batch through the breaker.
func (a *Appender) Append(ctx context.Context, events []models.TelemetryEvent) error {
	_, err := a.breaker.Execute(func() (any, error) {
		return nil, a.store.AppendEvents(ctx, events)
	})
	if err != nil {
		a.logger.Error().Err(err).Int("batch", len(events)).
			Str("breaker_state", a.breaker.State().String()).
			Msg("append failed")
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// Deliver implements EventSink for direct-write mode (NATS disabled).
func (a *Appender) Deliver(ctx context.Context, events []models.TelemetryEvent) error {
	return a.Append(ctx, events)
}

// State reports the breaker state for health endpoints.
func (a *Appender) State() string {
	return a.breaker.State().String()
}
