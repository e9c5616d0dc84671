// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package catalog

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testProducts() []Product {
	now := time.Now()
	return []Product{
		{ID: "p1", Category: "shoes", Popularity: 10, Active: true, Inventory: 5, AddedAt: now},
		{ID: "p2", Category: "shoes", Popularity: 20, Active: true, Inventory: 0, AddedAt: now},
		{ID: "p3", Category: "bags", Popularity: 5, Active: true, Inventory: 2, AddedAt: now},
		{ID: "p4", Category: "bags", Popularity: 8, Active: false, Inventory: 9, AddedAt: now},
	}
}

func TestCandidatesBeforeFirstRefresh(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	if _, ok := c.Candidates(""); ok {
		t.Error("expected no snapshot before first refresh")
	}
	if _, ok := c.Staleness(); ok {
		t.Error("expected no staleness before first refresh")
	}
}

func TestCandidatesFiltersInactiveAndOutOfStock(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	c.Refresh(testProducts())

	got, ok := c.Candidates("")
	if !ok {
		t.Fatal("expected snapshot after refresh")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scoreable products, got %d", len(got))
	}
	for _, p := range got {
		if !p.Active || p.Inventory <= 0 {
			t.Errorf("product %s should not be a candidate", p.ID)
		}
	}
}

func TestCandidatesCategoryFilter(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	c.Refresh(testProducts())

	shoes, _ := c.Candidates("shoes")
	if len(shoes) != 1 || shoes[0].ID != "p1" {
		t.Errorf("shoes candidates = %v, want [p1]", ids(shoes))
	}

	empty, ok := c.Candidates("electronics")
	if !ok {
		t.Fatal("snapshot should exist")
	}
	if len(empty) != 0 {
		t.Errorf("expected no electronics candidates, got %v", ids(empty))
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	c.Refresh(testProducts())

	c.Refresh([]Product{
		{ID: "p9", Category: "toys", Active: true, Inventory: 1},
	})

	got, _ := c.Candidates("")
	if len(got) != 1 || got[0].ID != "p9" {
		t.Errorf("candidates after replace = %v, want [p9]", ids(got))
	}

	snap, _ := c.Snapshot()
	if snap.Generation != 2 {
		t.Errorf("generation = %d, want 2", snap.Generation)
	}
	if _, ok := snap.Lookup("p1"); ok {
		t.Error("old product should not survive wholesale replacement")
	}
}

func TestConcurrentReadersDuringRefresh(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	c.Refresh(testProducts())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must always see one complete generation: either the whole
	// old set or the whole new set, never a mix.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, ok := c.Candidates("")
				if !ok {
					t.Error("snapshot vanished during refresh")
					return
				}
				if len(got) != 2 && len(got) != 50 {
					t.Errorf("observed partial snapshot with %d candidates", len(got))
					return
				}
			}
		}()
	}

	next := make([]Product, 50)
	for i := range next {
		next[i] = Product{ID: fmt.Sprintf("n%d", i), Category: "bulk", Active: true, Inventory: 1}
	}
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			c.Refresh(next)
		} else {
			c.Refresh(testProducts())
		}
	}
	close(stop)
	wg.Wait()
}

func TestStalenessGrows(t *testing.T) {
	t.Parallel()

	c := NewCache(zerolog.Nop())
	c.Refresh(testProducts())

	age1, ok := c.Staleness()
	if !ok {
		t.Fatal("expected staleness after refresh")
	}
	time.Sleep(10 * time.Millisecond)
	age2, _ := c.Staleness()
	if age2 <= age1 {
		t.Errorf("staleness should grow: %v -> %v", age1, age2)
	}
}

func ids(products []*Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
