// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/reelkit/reelrank/internal/logging"
)

// blockingRunner runs until its context is canceled.
type blockingRunner struct {
	started atomic.Int32
}

func (r *blockingRunner) Run(ctx context.Context) error {
	r.started.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

// crashingRunner fails a fixed number of times, then blocks.
type crashingRunner struct {
	crashes   atomic.Int32
	remaining atomic.Int32
}

func (r *crashingRunner) Run(ctx context.Context) error {
	if r.remaining.Add(-1) >= 0 {
		r.crashes.Add(1)
		return errors.New("simulated crash")
	}
	<-ctx.Done()
	return ctx.Err()
}

func testTree() *Tree {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	return NewTree(slog.New(logging.NewSlogHandler()), cfg)
}

func TestRunnerServiceStopsCleanlyOnCancel(t *testing.T) {
	tree := testTree()
	runner := &blockingRunner{}
	tree.AddPipelineService(NewRunnerService("test-runner", runner))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for runner.started.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("runner never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree exited with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestRunnerServiceRestartsAfterCrash(t *testing.T) {
	tree := testTree()
	runner := &crashingRunner{}
	runner.remaining.Store(2)
	tree.AddPipelineService(NewRunnerService("crashy", runner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.After(3 * time.Second)
	for runner.crashes.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("crashes = %d, supervisor did not restart the service", runner.crashes.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunnerServiceDoesNotRestartAfterCleanExit(t *testing.T) {
	runner := &blockingRunner{}
	svc := NewRunnerService("clean", runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve after cancel = %v, want ErrDoNotRestart", err)
	}
}
