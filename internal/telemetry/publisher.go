// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/reelkit/reelrank/internal/metrics"
	"github.com/reelkit/reelrank/internal/models"
)

// Publisher delivers accepted telemetry events to JetStream. Each event is
// one message whose Nats-Msg-Id is the deterministic event fingerprint, so
// the broker's duplicate window suppresses client retries before they ever
// reach the consumer.
type Publisher struct {
	publisher  message.Publisher
	serializer *Serializer

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects a Watermill NATS publisher.
func NewPublisher(url string, logger watermill.LoggerAdapter) (*Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmnats.NATSMarshaler{},
		JetStream: wmnats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // stream is pre-created by StreamManager
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{publisher: pub, serializer: NewSerializer()}, nil
}

// Deliver publishes each event in the batch. Implements EventSink.
func (p *Publisher) Deliver(_ context.Context, events []models.TelemetryEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	for i := range events {
		e := &events[i]
		data, err := p.serializer.MarshalEvent(e)
		if err != nil {
			return err
		}

		msg := message.NewMessage(e.EventID.String(), data)
		msg.Metadata.Set(natsgo.MsgIdHdr, e.DedupeID().String())

		if err := p.publisher.Publish(TopicEvents, msg); err != nil {
			return fmt.Errorf("publish event %s: %w", e.EventID, err)
		}
		metrics.PipelinePublished.WithLabelValues(TopicEvents).Inc()
	}
	return nil
}

// Close shuts the publisher down. Further Deliver calls fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
