// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package catalog maintains an immutable, atomically swapped snapshot of
// the active product catalog. Readers always observe one complete
// generation; a failed refresh keeps the previous snapshot serving.
package catalog

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
)

// Product is a single catalog entry. Products are immutable within a
// cache generation and replaced wholesale on refresh.
type Product struct {
	// ID is the product identifier.
	ID string `json:"id"`

	// Category groups products for filtered recommendation.
	Category string `json:"category"`

	// Price in the store currency.
	Price float64 `json:"price"`

	// Brand name.
	Brand string `json:"brand"`

	// Popularity is a monotonically maintained interaction counter kept
	// by the upstream store. Used for tie-breaking and cold-start scoring.
	Popularity int64 `json:"popularity"`

	// Active marks whether the product is currently sellable.
	Active bool `json:"active"`

	// Inventory is the in-stock unit count.
	Inventory int `json:"inventory"`

	// AddedAt is when the product entered the catalog. Drives the
	// recency component of the cold-start heuristic.
	AddedAt time.Time `json:"added_at"`
}

// Scoreable reports whether the product is eligible for recommendation.
func (p *Product) Scoreable() bool {
	return p.Active && p.Inventory > 0
}

// Snapshot is one immutable catalog generation.
type Snapshot struct {
	// Generation increments on every successful refresh.
	Generation uint64

	// FetchedAt is when this snapshot was built.
	FetchedAt time.Time

	// Products holds every product of the generation, scoreable or not.
	Products []Product

	byID       map[string]*Product
	byCategory map[string][]*Product
}

// Lookup returns the product with the given id, if present.
func (s *Snapshot) Lookup(id string) (*Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Cache holds the current catalog snapshot behind an atomic pointer.
// Refresh builds a fully indexed snapshot off to the side and publishes
// it in a single swap, so concurrent readers never block and never see
// a partially updated generation.
type Cache struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	logger     zerolog.Logger
}

// NewCache creates an empty catalog cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCache(logger zerolog.Logger) *Cache {
	return &Cache{
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Refresh replaces the entire catalog with a new generation.
// The swap is atomic: in-flight readers keep the snapshot they already
// hold and new readers see the new generation.
func (c *Cache) Refresh(products []Product) {
	snap := &Snapshot{
		Generation: c.generation.Add(1),
		FetchedAt:  time.Now(),
		Products:   products,
		byID:       make(map[string]*Product, len(products)),
		byCategory: make(map[string][]*Product),
	}

	scoreable := 0
	for i := range snap.Products {
		p := &snap.Products[i]
		snap.byID[p.ID] = p
		if p.Scoreable() {
			snap.byCategory[p.Category] = append(snap.byCategory[p.Category], p)
			scoreable++
		}
	}

	c.current.Store(snap)
	metrics.CatalogProducts.Set(float64(scoreable))

	c.logger.Info().
		Uint64("generation", snap.Generation).
		Int("products", len(products)).
		Int("scoreable", scoreable).
		Msg("catalog snapshot refreshed")
}

// Snapshot returns the current snapshot, or false if no refresh has
// ever succeeded.
func (c *Cache) Snapshot() (*Snapshot, bool) {
	snap := c.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap, true
}

// Candidates returns the scoreable products of the current snapshot,
// optionally filtered by category. An empty category means all
// categories. The second return is false when no snapshot exists yet.
//
// The returned slice points into the immutable snapshot; callers must
// not mutate the products.
func (c *Cache) Candidates(category string) ([]*Product, bool) {
	snap := c.current.Load()
	if snap == nil {
		return nil, false
	}

	if category != "" {
		return snap.byCategory[category], true
	}

	out := make([]*Product, 0, len(snap.Products))
	for i := range snap.Products {
		p := &snap.Products[i]
		if p.Scoreable() {
			out = append(out, p)
		}
	}
	return out, true
}

// Staleness returns the age of the current snapshot. The second return
// is false when no snapshot exists.
func (c *Cache) Staleness() (time.Duration, bool) {
	snap := c.current.Load()
	if snap == nil {
		return 0, false
	}
	age := time.Since(snap.FetchedAt)
	metrics.CatalogStaleness.Set(age.Seconds())
	return age, true
}
