// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/reelkit/reelrank/internal/models"
)

// Projection operations carried in catalog/social messages.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// CatalogMessage is a video catalog projection update.
type CatalogMessage struct {
	Op    string       `json:"op"`
	Video models.Video `json:"video"`
}

// FollowMessage is a follow-edge projection update.
type FollowMessage struct {
	Op   string            `json:"op"`
	Edge models.FollowEdge `json:"edge"`
}

// BlockMessage is a block-edge projection update.
type BlockMessage struct {
	Op   string           `json:"op"`
	Edge models.BlockEdge `json:"edge"`
}

// Serializer encodes and decodes pipeline messages.
type Serializer struct{}

// NewSerializer creates a serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// MarshalEvent encodes a telemetry event.
func (s *Serializer) MarshalEvent(e *models.TelemetryEvent) ([]byte, error) {
	if !e.EventType.Valid() {
		return nil, fmt.Errorf("invalid event type %q", e.EventType)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes a telemetry event.
func (s *Serializer) UnmarshalEvent(data []byte) (*models.TelemetryEvent, error) {
	var e models.TelemetryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &e, nil
}

// UnmarshalCatalog decodes a catalog projection message.
func (s *Serializer) UnmarshalCatalog(data []byte) (*CatalogMessage, error) {
	var m CatalogMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal catalog message: %w", err)
	}
	return &m, nil
}

// UnmarshalFollow decodes a follow projection message.
func (s *Serializer) UnmarshalFollow(data []byte) (*FollowMessage, error) {
	var m FollowMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal follow message: %w", err)
	}
	return &m, nil
}

// UnmarshalBlock decodes a block projection message.
func (s *Serializer) UnmarshalBlock(data []byte) (*BlockMessage, error) {
	var m BlockMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal block message: %w", err)
	}
	return &m, nil
}
