// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package telemetry

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/reelkit/reelrank/internal/config"
)

// EmbeddedServer is an in-process NATS JetStream instance for standalone
// deployments that want the async pipeline without running a broker.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer creates and starts an embedded NATS server on an
// ephemeral local port.
func NewEmbeddedServer(cfg *config.NATSConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName:         "reelrank-events",
		Host:               "127.0.0.1",
		Port:               -1, // random available port
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.MaxMemory,
		JetStreamMaxStore:  cfg.MaxStore,
		NoLog:              true,
		MaxPayload:         1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the connection URL for in-process clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Running reports server health.
func (s *EmbeddedServer) Running() bool {
	return s.server.Running()
}

// Shutdown stops the server and waits for completion.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
