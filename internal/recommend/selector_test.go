// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package recommend

import (
	"math"
	"testing"

	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
)

func products(specs ...catalog.Product) []*catalog.Product {
	out := make([]*catalog.Product, len(specs))
	for i := range specs {
		out[i] = &specs[i]
	}
	return out
}

func rankedIDs(ranked []ScoredProduct) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ProductID
	}
	return out
}

func equalIDs(got []ScoredProduct, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, id := range want {
		if got[i].ProductID != id {
			return false
		}
	}
	return true
}

func TestSelectUCBWarmOrdering(t *testing.T) {
	t.Parallel()

	// p1: two ticks (mean 1.0), p2: one cross (mean -1.0), p3 untried.
	pool := products(
		catalog.Product{ID: "p1", Popularity: 10},
		catalog.Product{ID: "p2", Popularity: 10},
		catalog.Product{ID: "p3", Popularity: 10},
	)
	stats := map[string]arms.Stat{
		"p1": {Pulls: 2, CumulativeReward: 2.0},
		"p2": {Pulls: 1, CumulativeReward: -1.0},
	}

	got := selectUCB(pool, stats, math.Sqrt2, 3)
	if !equalIDs(got, "p3", "p1", "p2") {
		t.Fatalf("order = %v, want [p3 p1 p2]", rankedIDs(got))
	}

	// Check the UCB arithmetic for the pulled arms (total pulls = 3).
	wantP1 := 1.0 + math.Sqrt2*math.Sqrt(math.Log(4)/3)
	wantP2 := -1.0 + math.Sqrt2*math.Sqrt(math.Log(4)/2)
	if math.Abs(got[1].Score-wantP1) > 1e-12 {
		t.Errorf("p1 score = %v, want %v", got[1].Score, wantP1)
	}
	if math.Abs(got[2].Score-wantP2) > 1e-12 {
		t.Errorf("p2 score = %v, want %v", got[2].Score, wantP2)
	}

	for i, r := range got {
		if r.Rank != i+1 {
			t.Errorf("rank at index %d = %d, want %d", i, r.Rank, i+1)
		}
	}
}

func TestSelectUCBExplorationGuarantee(t *testing.T) {
	t.Parallel()

	// Every zero-pull arm must rank at or above any pulled arm with
	// non-positive mean, regardless of popularity.
	pool := products(
		catalog.Product{ID: "loser", Popularity: 1000},
		catalog.Product{ID: "fresh1", Popularity: 1},
		catalog.Product{ID: "fresh2", Popularity: 2},
	)
	stats := map[string]arms.Stat{
		"loser": {Pulls: 5, CumulativeReward: 0},
	}

	got := selectUCB(pool, stats, math.Sqrt2, 3)
	if got[2].ProductID != "loser" {
		t.Fatalf("order = %v, untried arms must outrank zero-mean pulled arm", rankedIDs(got))
	}
}

func TestSelectUCBTieBreaks(t *testing.T) {
	t.Parallel()

	// All untried: popularity desc, then id asc.
	pool := products(
		catalog.Product{ID: "b", Popularity: 5},
		catalog.Product{ID: "a", Popularity: 5},
		catalog.Product{ID: "c", Popularity: 9},
	)

	got := selectUCB(pool, nil, math.Sqrt2, 3)
	if !equalIDs(got, "c", "a", "b") {
		t.Errorf("order = %v, want [c a b]", rankedIDs(got))
	}
}

func TestSelectUCBUntriedScoreIsFiniteBonus(t *testing.T) {
	t.Parallel()

	pool := products(catalog.Product{ID: "p1"})
	stats := map[string]arms.Stat{
		"other": {Pulls: 3, CumulativeReward: 3},
	}

	got := selectUCB(pool, stats, math.Sqrt2, 1)
	want := math.Sqrt2 * math.Sqrt(math.Log(4)/1)
	if math.Abs(got[0].Score-want) > 1e-12 {
		t.Errorf("untried score = %v, want finite bonus %v", got[0].Score, want)
	}
	if math.IsInf(got[0].Score, 0) || math.IsNaN(got[0].Score) {
		t.Error("scores must stay finite for serialization")
	}
}

func TestSelectUCBTopK(t *testing.T) {
	t.Parallel()

	pool := products(
		catalog.Product{ID: "a", Popularity: 3},
		catalog.Product{ID: "b", Popularity: 2},
		catalog.Product{ID: "c", Popularity: 1},
	)

	got := selectUCB(pool, nil, math.Sqrt2, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	// Fewer candidates than k: return all of them.
	got = selectUCB(pool, nil, math.Sqrt2, 10)
	if len(got) != 3 {
		t.Fatalf("len = %d, want all 3", len(got))
	}

	// No duplicates.
	seen := map[string]bool{}
	for _, r := range got {
		if seen[r.ProductID] {
			t.Errorf("duplicate product %s in result", r.ProductID)
		}
		seen[r.ProductID] = true
	}
}

func TestSelectUCBEmptyPool(t *testing.T) {
	t.Parallel()

	if got := selectUCB(nil, nil, math.Sqrt2, 5); got != nil {
		t.Errorf("empty pool should yield nil, got %v", got)
	}
}
