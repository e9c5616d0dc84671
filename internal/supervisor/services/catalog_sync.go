// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
)

// CatalogSource fetches the full product listing from the upstream
// store. Satisfied by *backend.Client.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]catalog.Product, error)
}

// CatalogSyncService keeps the catalog cache fresh: one refresh at
// startup, then one per interval. A failed refresh logs and waits for
// the next tick; the engine keeps serving the last good snapshot and
// flags results stale once the tolerance is exceeded.
//
// RefreshNow serves the manual refresh endpoint; it shares a mutex
// with the periodic loop so only one fetch runs at a time.
type CatalogSyncService struct {
	source   CatalogSource
	cache    *catalog.Cache
	interval time.Duration
	logger   zerolog.Logger

	mu sync.Mutex
}

// NewCatalogSyncService builds the sync loop.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCatalogSyncService(source CatalogSource, cache *catalog.Cache, interval time.Duration, logger zerolog.Logger) *CatalogSyncService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CatalogSyncService{
		source:   source,
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("component", "catalog-sync").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CatalogSyncService) Serve(ctx context.Context) error {
	if err := s.RefreshNow(ctx); err != nil {
		// Startup without a backend is survivable; the API reports
		// degraded health until the first snapshot lands.
		s.logger.Warn().Err(err).Msg("initial catalog refresh failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshNow(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("catalog refresh failed")
			}
			if age, ok := s.cache.Staleness(); ok {
				metrics.CatalogStaleness.Set(age.Seconds())
			}
		}
	}
}

// RefreshNow fetches the catalog and swaps in a fresh snapshot.
func (s *CatalogSyncService) RefreshNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.source.FetchCatalog(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("catalog fetch failed: %w", err)
	}

	s.cache.Refresh(products)
	metrics.CatalogRefreshes.WithLabelValues("ok").Inc()
	metrics.CatalogStaleness.Set(0)

	s.logger.Info().Int("products", len(products)).Msg("catalog refreshed")
	return nil
}

// String implements fmt.Stringer for suture's event log.
func (s *CatalogSyncService) String() string {
	return "catalog-sync"
}
