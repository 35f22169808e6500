// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/reelkit/reelrank/internal/api"
	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/database"
	"github.com/reelkit/reelrank/internal/live"
	"github.com/reelkit/reelrank/internal/logging"
	"github.com/reelkit/reelrank/internal/ranking"
	"github.com/reelkit/reelrank/internal/signer"
	"github.com/reelkit/reelrank/internal/supervisor"
	"github.com/reelkit/reelrank/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("nats", cfg.NATS.Enabled).
		Msg("starting reelrank")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeQuietly("database", db.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = db.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	liveIndex, err := live.New(&cfg.Live)
	if err != nil {
		return fmt.Errorf("open live index: %w", err)
	}
	defer closeQuietly("live index", liveIndex.Close)

	if cfg.Signer.Secret == "" {
		// Ephemeral key: signed URLs stop verifying across restarts.
		cfg.Signer.Secret = randomSecret()
		logging.Warn().Msg("signer.secret not configured, using an ephemeral key")
	}
	urlSigner, err := signer.New(&cfg.Signer)
	if err != nil {
		return fmt.Errorf("init url signer: %w", err)
	}

	engine := ranking.NewEngine(db, liveIndex, urlSigner, cfg, logging.Logger())

	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	healthComponents := map[string]func() string{}

	appender := telemetry.NewAppender(db, &cfg.Telemetry, logging.Logger())
	healthComponents["telemetry_breaker"] = appender.State

	var sink telemetry.EventSink = appender
	if cfg.NATS.Enabled {
		pipelineSink, cleanup, err := startPipeline(ctx, cfg, appender, db, tree, healthComponents)
		if err != nil {
			return err
		}
		defer cleanup()
		sink = pipelineSink
	}

	ingestor := telemetry.NewIngestor(sink, &cfg.Telemetry, logging.Logger())

	handler := api.NewHandler(engine, ingestor, db, liveIndex, api.HealthChecker{
		Storage:    db,
		Components: healthComponents,
	}, &cfg.API)
	router := api.NewRouter(handler, &cfg.API, &cfg.Security)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("shutdown complete")
	return nil
}

// startPipeline brings up the JetStream leg: embedded server when configured,
// stream provisioning, the publisher the ingestor writes to, and the consumer
// that drains the stream into the store.
func startPipeline(
	ctx context.Context,
	cfg *config.Config,
	appender *telemetry.Appender,
	db *database.DB,
	tree *supervisor.Tree,
	healthComponents map[string]func() string,
) (telemetry.EventSink, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.NATS.EmbeddedServer {
		embedded, err := telemetry.NewEmbeddedServer(&cfg.NATS)
		if err != nil {
			return nil, cleanup, fmt.Errorf("start embedded nats: %w", err)
		}
		cleanups = append(cleanups, embedded.Shutdown)
		cfg.NATS.URL = embedded.ClientURL()
		healthComponents["nats"] = func() string {
			if embedded.Running() {
				return "ok"
			}
			return "down"
		}
	}

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, cleanup, fmt.Errorf("connect nats: %w", err)
	}
	cleanups = append(cleanups, nc.Close)

	streams, err := telemetry.NewStreamManager(nc, &cfg.NATS)
	if err != nil {
		return nil, cleanup, fmt.Errorf("init stream manager: %w", err)
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		return nil, cleanup, fmt.Errorf("provision stream: %w", err)
	}

	wmLogger := telemetry.NewWatermillLogger(logging.Logger())
	publisher, err := telemetry.NewPublisher(cfg.NATS.URL, wmLogger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create publisher: %w", err)
	}
	cleanups = append(cleanups, func() { closeQuietly("publisher", publisher.Close) })

	consumer, err := telemetry.NewConsumer(&cfg.NATS, appender, db, wmLogger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create consumer: %w", err)
	}
	cleanups = append(cleanups, func() { closeQuietly("consumer", consumer.Close) })
	tree.AddPipelineService(supervisor.NewRunnerService("pipeline-consumer", consumer))

	return publisher, cleanup, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func closeQuietly(name string, close func() error) {
	if err := close(); err != nil {
		logging.Warn().Err(err).Str("component", name).Msg("close failed")
	}
}
