// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package main is the entry point for the recommendation engine.
//
// The server initializes components in order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml, env)
//  2. Arm store: in-memory or BadgerDB-backed per-user bandit statistics
//  3. Catalog cache, profile registry, ingestion path
//  4. Backend client: circuit-broken HTTP client for catalog and history
//  5. Supervisor tree: catalog sync loop (data layer), HTTP server (api layer)
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file, built-in
// defaults. Useful variables:
//
//	HTTP_PORT             listen port (default 8001)
//	BACKEND_URL           upstream store API root (default http://localhost:5000/api)
//	ARM_STORE_BACKEND     memory | badger (default memory)
//	ARM_STORE_PATH        badger data directory
//	COLD_START_THRESHOLD  interactions before bandit serving (default 3)
//	LOG_LEVEL             trace|debug|info|warn|error
//
// The server handles graceful shutdown on SIGINT and SIGTERM: stops
// accepting connections, drains in-flight requests within the shutdown
// timeout, then closes the arm store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samarJ19/wallmart-Hackathon/internal/api"
	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/backend"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/config"
	"github.com/samarJ19/wallmart-Hackathon/internal/ingest"
	"github.com/samarJ19/wallmart-Hackathon/internal/logging"
	"github.com/samarJ19/wallmart-Hackathon/internal/profile"
	"github.com/samarJ19/wallmart-Hackathon/internal/recommend"
	"github.com/samarJ19/wallmart-Hackathon/internal/supervisor"
	"github.com/samarJ19/wallmart-Hackathon/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger reports this.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.URL).
		Str("arm_store", cfg.ArmStore.Backend).
		Int("cold_start_threshold", cfg.Engine.ColdStartThreshold).
		Msg("Configuration loaded")

	store, err := newArmStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize arm store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing arm store")
		}
	}()

	logger := logging.Logger()
	cache := catalog.NewCache(logger)
	profiles := profile.NewRegistry(profile.Options{
		AffinityAlpha: cfg.Engine.AffinityAlpha,
	})

	rewards, err := ingest.RewardTableFromConfig(cfg.Engine.Rewards)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid reward table")
	}
	ingestor := ingest.NewIngestor(store, profiles, cache, rewards, logger)

	backendClient := backend.NewClient(backend.Options{
		BaseURL:                 cfg.Backend.URL,
		Timeout:                 cfg.Backend.Timeout,
		RateLimit:               cfg.Backend.RateLimit,
		RateBurst:               cfg.Backend.RateBurst,
		BreakerFailureThreshold: cfg.Backend.BreakerFailureThreshold,
		BreakerOpenTimeout:      cfg.Backend.BreakerOpenTimeout,
	}, logger)

	engine := recommend.NewEngine(cache, store, profiles, ingestor, backendClient, recommend.Options{
		ColdStartThreshold: int64(cfg.Engine.ColdStartThreshold),
		// Explicit pointers: a configured zero (pure exploitation, no
		// jitter) must survive, not fall back to the engine defaults.
		ExplorationC:       &cfg.Engine.ExplorationC,
		DefaultK:           cfg.Engine.DefaultK,
		MaxK:               cfg.Engine.MaxK,
		StalenessTolerance: cfg.Engine.StalenessTolerance,
		JitterAmplitude:    &cfg.Engine.JitterAmplitude,
		ColdStart: recommend.ColdStartWeights{
			Popularity: cfg.Engine.ColdStart.Popularity,
			Recency:    cfg.Engine.ColdStart.Recency,
			Affinity:   cfg.Engine.ColdStart.Affinity,
		},
	}, logger)

	syncService := services.NewCatalogSyncService(backendClient, cache, cfg.Engine.RefreshInterval, logger)

	handler := api.NewHandler(engine, ingestor, cache, profiles, store, syncService, logger)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(syncService)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newArmStore builds the configured arm statistics backend.
func newArmStore(cfg *config.Config) (arms.Store, error) {
	switch cfg.ArmStore.Backend {
	case "badger":
		return arms.NewBadgerStore(arms.BadgerOptions{
			Path:     cfg.ArmStore.Path,
			DedupTTL: cfg.Engine.DedupTTL,
		}, logging.Logger())
	default:
		return arms.NewMemoryStore(arms.MemoryOptions{
			DedupTTL:        cfg.Engine.DedupTTL,
			DedupMaxEntries: cfg.Engine.DedupMaxEntries,
		}, logging.Logger()), nil
	}
}
