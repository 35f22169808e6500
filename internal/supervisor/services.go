// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/reelkit/reelrank/internal/logging"
)

// HTTPService adapts an http.Server to suture.Service. Shutdown is graceful:
// on context cancellation in-flight requests get ShutdownTimeout to finish.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService wraps a configured http.Server.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	logging.Info().Str("addr", s.server.Addr).Msg("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http shutdown incomplete, closing")
			_ = s.server.Close()
		}
		<-errCh
		return suture.ErrDoNotRestart
	}
}

func (s *HTTPService) String() string { return "http-server" }

// Runner is a blocking service loop. Implemented by telemetry.Consumer.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runner to suture.Service.
type RunnerService struct {
	name   string
	runner Runner
}

// NewRunnerService names and wraps a Runner.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{name: name, runner: runner}
}

// Serve implements suture.Service. A clean exit after context cancellation
// is terminal; anything else is a crash suture should restart.
func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		return suture.ErrDoNotRestart
	}
	return err
}

func (s *RunnerService) String() string { return s.name }
