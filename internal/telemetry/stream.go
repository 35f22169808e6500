// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/reelkit/reelrank/internal/config"
)

// dedupeWindow is the JetStream duplicate-tracking window. Client retries
// of the same interaction inside this window collapse to one message.
const dedupeWindow = 2 * time.Minute

// StreamManager owns the JetStream stream lifecycle.
type StreamManager struct {
	js  jetstream.JetStream
	nc  *nats.Conn
	cfg *config.NATSConfig
}

// NewStreamManager creates a stream manager on an established connection.
func NewStreamManager(nc *nats.Conn, cfg *config.NATSConfig) (*StreamManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &StreamManager{js: js, nc: nc, cfg: cfg}, nil
}

// EnsureStream creates or updates the pipeline stream.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	retention := time.Duration(m.cfg.StreamRetentionDays) * 24 * time.Hour

	streamCfg := jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{StreamSubjects},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     retention,
		MaxBytes:   m.cfg.MaxStore,
		Duplicates: dedupeWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}

	if _, err := m.js.Stream(ctx, StreamName); err == nil {
		stream, err := m.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream: %w", err)
		}
		return stream, nil
	}

	stream, err := m.js.CreateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return stream, nil
}

// StreamInfo returns the stream's current state, for health reporting.
func (m *StreamManager) StreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}
	return stream.Info(ctx)
}
