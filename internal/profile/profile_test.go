// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package profile

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"
)

func TestGetDistinguishesUnknownFromEmpty(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{})

	if _, ok := r.Get("ghost"); ok {
		t.Error("never-seen user should not be found")
	}

	r.GetOrCreate("u1")
	p, ok := r.Get("u1")
	if !ok {
		t.Fatal("registered user should be found")
	}
	if p.TotalInteractions != 0 {
		t.Errorf("fresh profile interactions = %d, want 0", p.TotalInteractions)
	}
}

func TestApplyCountsAndEMA(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{AffinityAlpha: 0.2, RewardScale: 5.0})
	now := time.Now()

	// purchase (reward 5.0) -> signal 1.0
	p := r.Apply("u1", "shoes", 5.0, now)
	if p.TotalInteractions != 1 {
		t.Errorf("interactions = %d, want 1", p.TotalInteractions)
	}
	want := 0.2 * 1.0
	if math.Abs(p.Affinity["shoes"]-want) > 1e-12 {
		t.Errorf("affinity after purchase = %v, want %v", p.Affinity["shoes"], want)
	}

	// cross (reward -1.0) -> signal -0.2
	p = r.Apply("u1", "shoes", -1.0, now)
	want = 0.8*want + 0.2*(-0.2)
	if math.Abs(p.Affinity["shoes"]-want) > 1e-12 {
		t.Errorf("affinity after cross = %v, want %v", p.Affinity["shoes"], want)
	}
	if p.TotalInteractions != 2 {
		t.Errorf("interactions = %d, want 2", p.TotalInteractions)
	}
}

func TestApplySignalClamped(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{AffinityAlpha: 1.0, RewardScale: 1.0})
	p := r.Apply("u1", "c", 100.0, time.Now())
	if p.Affinity["c"] != 1.0 {
		t.Errorf("affinity = %v, want clamped to 1.0", p.Affinity["c"])
	}
	p = r.Apply("u1", "c", -100.0, time.Now())
	if p.Affinity["c"] != -1.0 {
		t.Errorf("affinity = %v, want clamped to -1.0", p.Affinity["c"])
	}
}

func TestApplyEmptyCategoryStillCounts(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{})
	p := r.Apply("u1", "", 1.0, time.Now())
	if p.TotalInteractions != 1 {
		t.Errorf("interactions = %d, want 1", p.TotalInteractions)
	}
	if len(p.Affinity) != 0 {
		t.Errorf("affinity = %v, want empty", p.Affinity)
	}
}

func TestProfileSnapshotIsCopy(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{})
	r.Apply("u1", "shoes", 5.0, time.Now())

	p, _ := r.Get("u1")
	p.Affinity["shoes"] = 42

	fresh, _ := r.Get("u1")
	if fresh.Affinity["shoes"] == 42 {
		t.Error("mutating a returned profile changed the registry")
	}
}

func TestConcurrentApplyMonotonicCounter(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Options{})
	now := time.Now()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Apply("u1", fmt.Sprintf("c%d", i%3), 1.0, now)
		}(i)
	}
	wg.Wait()

	p, _ := r.Get("u1")
	if p.TotalInteractions != n {
		t.Errorf("interactions = %d, want %d", p.TotalInteractions, n)
	}
}
