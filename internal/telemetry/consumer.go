// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/metrics"
	"github.com/reelkit/reelrank/internal/models"
)

// ProjectionStore is the write side the consumer maintains.
type ProjectionStore interface {
	UpsertVideo(ctx context.Context, v *models.Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	UpsertFollow(ctx context.Context, edge *models.FollowEdge) error
	DeleteFollow(ctx context.Context, followerID, creatorID uuid.UUID) error
	UpsertBlock(ctx context.Context, edge *models.BlockEdge) error
	DeleteBlock(ctx context.Context, blockerID, blockedID uuid.UUID) error
}

// Consumer runs the Watermill router that drains the pipeline stream into
// the projection store. Handler errors nack the message and JetStream
// redelivers; the store's idempotent writes make that safe.
type Consumer struct {
	router     *message.Router
	subscriber message.Subscriber
	appender   *Appender
	store      ProjectionStore
	serializer *Serializer
}

// NewConsumer wires the subscriber, router middleware, and topic handlers.
func NewConsumer(cfg *config.NATSConfig, appender *Appender, store ProjectionStore, logger watermill.LoggerAdapter) (*Consumer, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
	}
	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(5),
		natsgo.MaxAckPending(256),
		natsgo.AckWait(30 * time.Second),
		natsgo.DeliverNew(),
		natsgo.BindStream(StreamName),
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmnats.NATSMarshaler{},
		JetStream: wmnats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      5,
			InitialInterval: time.Second,
			MaxInterval:     time.Minute,
			Multiplier:      2.0,
			Logger:          logger,
		}.Middleware,
	)

	c := &Consumer{
		router:     router,
		subscriber: sub,
		appender:   appender,
		store:      store,
		serializer: NewSerializer(),
	}

	router.AddNoPublisherHandler("telemetry-append", TopicEvents, sub, c.handleEvent)
	router.AddNoPublisherHandler("catalog-projection", TopicCatalog, sub, c.handleCatalog)
	router.AddNoPublisherHandler("follow-projection", TopicFollows, sub, c.handleFollow)
	router.AddNoPublisherHandler("block-projection", TopicBlocks, sub, c.handleBlock)

	return c, nil
}

// Run blocks until the context is canceled or the router fails.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running reports whether the router is processing messages.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close stops the router and subscriber.
func (c *Consumer) Close() error {
	if err := c.router.Close(); err != nil {
		return err
	}
	return c.subscriber.Close()
}

func (c *Consumer) handleEvent(msg *message.Message) error {
	event, err := c.serializer.UnmarshalEvent(msg.Payload)
	if err != nil {
		// Malformed payloads can never succeed; ack and count instead of
		// cycling through redelivery.
		metrics.PipelineConsumed.WithLabelValues(TopicEvents, "malformed").Inc()
		return nil
	}

	start := time.Now()
	if err := c.appender.Append(msg.Context(), []models.TelemetryEvent{*event}); err != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicEvents, "failed").Inc()
		return err
	}
	metrics.PipelineAppendDuration.Observe(time.Since(start).Seconds())
	metrics.PipelineConsumed.WithLabelValues(TopicEvents, "ok").Inc()
	return nil
}

func (c *Consumer) handleCatalog(msg *message.Message) error {
	m, err := c.serializer.UnmarshalCatalog(msg.Payload)
	if err != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicCatalog, "malformed").Inc()
		return nil
	}

	var opErr error
	switch m.Op {
	case OpUpsert:
		opErr = c.store.UpsertVideo(msg.Context(), &m.Video)
	case OpDelete:
		opErr = c.store.DeleteVideo(msg.Context(), m.Video.ID)
	default:
		metrics.PipelineConsumed.WithLabelValues(TopicCatalog, "malformed").Inc()
		return nil
	}
	if opErr != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicCatalog, "failed").Inc()
		return opErr
	}
	metrics.PipelineConsumed.WithLabelValues(TopicCatalog, "ok").Inc()
	return nil
}

func (c *Consumer) handleFollow(msg *message.Message) error {
	m, err := c.serializer.UnmarshalFollow(msg.Payload)
	if err != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicFollows, "malformed").Inc()
		return nil
	}

	var opErr error
	switch m.Op {
	case OpUpsert:
		opErr = c.store.UpsertFollow(msg.Context(), &m.Edge)
	case OpDelete:
		opErr = c.store.DeleteFollow(msg.Context(), m.Edge.FollowerID, m.Edge.FollowingID)
	default:
		metrics.PipelineConsumed.WithLabelValues(TopicFollows, "malformed").Inc()
		return nil
	}
	if opErr != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicFollows, "failed").Inc()
		return opErr
	}
	metrics.PipelineConsumed.WithLabelValues(TopicFollows, "ok").Inc()
	return nil
}

func (c *Consumer) handleBlock(msg *message.Message) error {
	m, err := c.serializer.UnmarshalBlock(msg.Payload)
	if err != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicBlocks, "malformed").Inc()
		return nil
	}

	var opErr error
	switch m.Op {
	case OpUpsert:
		opErr = c.store.UpsertBlock(msg.Context(), &m.Edge)
	case OpDelete:
		opErr = c.store.DeleteBlock(msg.Context(), m.Edge.BlockerID, m.Edge.BlockedID)
	default:
		metrics.PipelineConsumed.WithLabelValues(TopicBlocks, "malformed").Inc()
		return nil
	}
	if opErr != nil {
		metrics.PipelineConsumed.WithLabelValues(TopicBlocks, "failed").Inc()
		return opErr
	}
	metrics.PipelineConsumed.WithLabelValues(TopicBlocks, "ok").Inc()
	return nil
}
