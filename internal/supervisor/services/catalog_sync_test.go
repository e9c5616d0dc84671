// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
)

type fakeSource struct {
	fetches  atomic.Int64
	err      error
	products []catalog.Product
}

func (f *fakeSource) FetchCatalog(_ context.Context) ([]catalog.Product, error) {
	f.fetches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func TestRefreshNowSwapsSnapshot(t *testing.T) {
	t.Parallel()

	cache := catalog.NewCache(zerolog.Nop())
	source := &fakeSource{products: []catalog.Product{
		{ID: "p1", Category: "shoes", Active: true, Inventory: 1},
	}}
	svc := NewCatalogSyncService(source, cache, time.Minute, zerolog.Nop())

	if err := svc.RefreshNow(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap, ok := cache.Snapshot()
	if !ok {
		t.Fatal("no snapshot after refresh")
	}
	if len(snap.Products) != 1 || snap.Products[0].ID != "p1" {
		t.Errorf("snapshot products = %+v", snap.Products)
	}
}

func TestRefreshNowPropagatesFetchError(t *testing.T) {
	t.Parallel()

	cache := catalog.NewCache(zerolog.Nop())
	source := &fakeSource{err: errors.New("backend down")}
	svc := NewCatalogSyncService(source, cache, time.Minute, zerolog.Nop())

	if err := svc.RefreshNow(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if _, ok := cache.Snapshot(); ok {
		t.Error("failed refresh must not install a snapshot")
	}
}

func TestServeRefreshesImmediatelyAndPeriodically(t *testing.T) {
	t.Parallel()

	cache := catalog.NewCache(zerolog.Nop())
	source := &fakeSource{products: []catalog.Product{{ID: "p1", Active: true, Inventory: 1}}}
	svc := NewCatalogSyncService(source, cache, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for source.fetches.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d fetches before deadline", source.fetches.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestServeSurvivesFailedRefresh(t *testing.T) {
	t.Parallel()

	cache := catalog.NewCache(zerolog.Nop())
	source := &fakeSource{err: errors.New("backend down")}
	svc := NewCatalogSyncService(source, cache, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for source.fetches.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sync loop stopped retrying after a failed refresh")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
