// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package profile tracks per-user interaction totals and category
// affinity. The interaction counter is the single source of truth for
// the cold-start state transition and only moves forward.
package profile

import (
	"sync"
	"time"
)

// UserProfile is a point-in-time copy of one user's state. The Affinity
// map is owned by the caller.
type UserProfile struct {
	UserID string `json:"user_id"`

	// TotalInteractions counts successfully ingested, non-duplicate
	// events. Monotonically increasing.
	TotalInteractions int64 `json:"total_interactions"`

	// Affinity holds per-category preference weights in [-1, 1],
	// maintained as an exponential moving average of reward signals.
	Affinity map[string]float64 `json:"affinity"`

	FirstSeen time.Time `json:"first_seen"`
	LastEvent time.Time `json:"last_event"`
}

// Registry is the in-memory profile store.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*record

	// alpha is the EMA smoothing factor.
	alpha float64

	// rewardScale normalizes raw rewards into [-1, 1] affinity signals.
	rewardScale float64
}

type record struct {
	totalInteractions int64
	affinity          map[string]float64
	firstSeen         time.Time
	lastEvent         time.Time
}

// Options configures a Registry.
type Options struct {
	// AffinityAlpha is the EMA smoothing factor. Default: 0.2
	AffinityAlpha float64

	// RewardScale divides raw rewards before clamping to [-1, 1].
	// Default: 5.0, the largest reward magnitude in the default table.
	RewardScale float64
}

// NewRegistry creates an empty profile registry.
func NewRegistry(opts Options) *Registry {
	if opts.AffinityAlpha <= 0 || opts.AffinityAlpha > 1 {
		opts.AffinityAlpha = 0.2
	}
	if opts.RewardScale <= 0 {
		opts.RewardScale = 5.0
	}
	return &Registry{
		profiles:    make(map[string]*record),
		alpha:       opts.AffinityAlpha,
		rewardScale: opts.RewardScale,
	}
}

// Get returns a copy of the user's profile, or false when the user has
// never been seen. A known user with zero interactions still returns
// true; absence and emptiness are different states.
func (r *Registry) Get(userID string) (UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.profiles[userID]
	if !ok {
		return UserProfile{}, false
	}
	return rec.snapshot(userID), true
}

// GetOrCreate returns the user's profile, registering the user with
// zero history on first sight.
func (r *Registry) GetOrCreate(userID string) UserProfile {
	r.mu.RLock()
	if rec, ok := r.profiles[userID]; ok {
		snap := rec.snapshot(userID)
		r.mu.RUnlock()
		return snap
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.profiles[userID]
	if !ok {
		rec = &record{
			affinity:  make(map[string]float64),
			firstSeen: time.Now(),
		}
		r.profiles[userID] = rec
	}
	return rec.snapshot(userID)
}

// Apply records one successfully ingested, non-duplicate event: bumps
// the interaction counter and folds the reward into the category
// affinity EMA. Events with an empty category still count toward the
// interaction total.
func (r *Registry) Apply(userID, category string, reward float64, at time.Time) UserProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.profiles[userID]
	if !ok {
		rec = &record{
			affinity:  make(map[string]float64),
			firstSeen: at,
		}
		r.profiles[userID] = rec
	}

	rec.totalInteractions++
	if at.After(rec.lastEvent) {
		rec.lastEvent = at
	}

	if category != "" {
		signal := clamp(reward/r.rewardScale, -1, 1)
		rec.affinity[category] = (1-r.alpha)*rec.affinity[category] + r.alpha*signal
	}

	return rec.snapshot(userID)
}

// Len returns the number of known users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

func (rec *record) snapshot(userID string) UserProfile {
	affinity := make(map[string]float64, len(rec.affinity))
	for k, v := range rec.affinity {
		affinity[k] = v
	}
	return UserProfile{
		UserID:            userID,
		TotalInteractions: rec.totalInteractions,
		Affinity:          affinity,
		FirstSeen:         rec.firstSeen,
		LastEvent:         rec.lastEvent,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
