// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// blockingService runs until its context is canceled.
type blockingService struct {
	started atomic.Int64
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.started.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return "blocking" }

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 || cfg.FailureDecay != 30.0 {
		t.Errorf("failure params = %v/%v", cfg.FailureThreshold, cfg.FailureDecay)
	}
	if cfg.FailureBackoff != 15*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("timing params = %v/%v", cfg.FailureBackoff, cfg.ShutdownTimeout)
	}
}

func TestTreeRunsServicesInBothLayers(t *testing.T) {
	t.Parallel()

	tree := NewTree(slog.New(slog.DiscardHandler), TreeConfig{})

	data := &blockingService{}
	api := &blockingService{}
	tree.AddDataService(data)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for data.started.Load() == 0 || api.started.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("services not started: data=%d api=%d", data.started.Load(), api.started.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree stopped with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	t.Parallel()

	tree := NewTree(slog.New(slog.DiscardHandler), TreeConfig{
		FailureThreshold: 100,
		FailureBackoff:   time.Millisecond,
	})

	var starts atomic.Int64
	crasher := serviceFunc(func(ctx context.Context) error {
		if starts.Add(1) < 3 {
			return errors.New("boom")
		}
		<-ctx.Done()
		return ctx.Err()
	})
	tree.AddDataService(crasher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(5 * time.Second)
	for starts.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("service restarted %d times, want 3 starts", starts.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-errCh
}

type serviceFunc func(ctx context.Context) error

func (f serviceFunc) Serve(ctx context.Context) error { return f(ctx) }
func (f serviceFunc) String() string                  { return "func" }
